// Package workspace manages the staging directory a distribution is assembled in.
//
// A Staging value owns exactly one directory. Begin recreates it from scratch,
// discarding anything a previous aborted run left behind. A populated staging
// directory is consumed exactly once, either by Promote (renamed into the
// permanent distribution path, replacing what was there) or by Discard after it
// has been archived. Abort removes it after a failure and is safe to call at
// any point, including before Begin.
package workspace
