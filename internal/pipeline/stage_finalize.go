package pipeline

import (
	"log/slog"

	"git.home.luguber.info/inful/distbuilder/internal/archive"
	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
	"git.home.luguber.info/inful/distbuilder/internal/workspace"
)

// finalize consumes the staging directory exactly once: it is either archived
// and discarded, or promoted to the distribution path. It returns the output
// location.
func (r *Runner) finalize(log *slog.Logger, report *Report, staging *workspace.Staging) (string, error) {
	if r.cfg.ArchiveMode() {
		dest := r.cfg.ArchiveDestination()
		if err := archive.Create(staging.Path(), dest); err != nil {
			return "", fe.FinalizeError("failed to create archive").
				WithCause(err).
				WithContext("path", dest).
				Build()
		}
		log.Info("Created archive", logfields.Path(dest))

		if err := staging.Discard(); err != nil {
			report.addWarning(err)
			log.Warn("Failed to remove staging directory after archiving", logfields.Path(staging.Path()), logfields.Error(err))
		}
		return dest, nil
	}

	dist := r.cfg.DistPath()
	if err := staging.Promote(dist); err != nil {
		return "", fe.FinalizeError("failed to move staging directory into place").
			WithCause(err).
			WithContext("path", dist).
			Build()
	}
	return dist, nil
}
