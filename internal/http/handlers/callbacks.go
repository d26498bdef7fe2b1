package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/vendor"
)

// maxCallbackBytes bounds how much of a vendor notification is read. Real
// payloads are a few KB; anything larger is noise.
const maxCallbackBytes = 1 << 20

// VendorCallback ingests an asynchronous completion notification. The vendor
// retries delivery on any non-2xx response, and a payload we cannot parse
// will not parse better on retry, so the handler acknowledges success no
// matter what happened internally; failures are logged for diagnosis.
//
// The durable registry write completes before the acknowledgement is sent:
// an observed response implies the terminal state survived.
func (a *App) VendorCallback(w http.ResponseWriter, r *http.Request) {
	defer a.ack(w)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBytes))
	if err != nil {
		a.Logger.Error().Err(err).Msg("callback: read body failed")
		return
	}

	note, err := vendor.ParseNotification(body)
	if err != nil {
		a.Logger.Warn().Err(err).Str("body", truncate(string(body), 512)).Msg("callback: malformed notification")
		return
	}

	logger := a.Logger.With().Str("task_id", note.TaskID).Str("state", note.State).Logger()

	switch {
	case note.State == vendor.StateSuccess && note.ResultURL != "":
		a.completeTask(r.Context(), logger, note)
	case note.State == vendor.StateSuccess:
		// A success without an extractable URL cannot be completed or
		// billed; leave the record untouched so a well-formed redelivery
		// can still finish the task.
		logger.Warn().Msg("callback: success notification without result url")
	case note.State == vendor.StateFail:
		a.failTask(r.Context(), logger, note)
	default:
		if note.State == "" {
			logger.Warn().Msg("callback: notification carries no state")
			return
		}
		// Unknown vendor states are stored verbatim with no side effects.
		status := domain.TaskStatus(note.State)
		if _, _, err := a.Registry.Update(r.Context(), note.TaskID, domain.TaskPatch{Status: &status}); err != nil {
			logger.Error().Err(err).Msg("callback: store vendor state failed")
		}
	}
}

// completeTask marks the task successful, bills it at most once, and appends
// the artifact to the catalog.
func (a *App) completeTask(ctx context.Context, logger zerolog.Logger, note vendor.Notification) {
	status := domain.TaskStatusSuccess
	task, transitioned, err := a.Registry.Update(ctx, note.TaskID, domain.TaskPatch{
		Status:    &status,
		ResultURL: &note.ResultURL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("callback: persist success failed")
		return
	}
	if task.Status != domain.TaskStatusSuccess {
		// The task already failed; a late success must not resurrect or
		// bill it, because no artifact was ever delivered to the owner.
		logger.Warn().Str("status", string(task.Status)).Msg("callback: success for already-terminal task ignored")
		return
	}

	a.chargeOnce(ctx, logger, task)

	// Appending only on the transition keeps the catalog at one row per
	// completed task across redeliveries; the charge claim above stays
	// independent so an interrupted first delivery can still bill.
	if transitioned && a.Catalog != nil {
		artifact := domain.GeneratedArtifact{
			TaskID: task.TaskID,
			UserID: task.OwnerUserID,
			Kind:   task.Kind,
			URL:    task.ResultURL,
		}
		if err := a.Catalog.Append(ctx, artifact); err != nil {
			logger.Error().Err(err).Msg("callback: catalog append failed")
		}
	}
}

// chargeOnce claims the billing flag and charges only on a won claim, so
// concurrent duplicate deliveries produce at most one completed transaction.
func (a *App) chargeOnce(ctx context.Context, logger zerolog.Logger, task domain.GenerationTask) {
	if task.OwnerUserID == "" {
		logger.Warn().Msg("callback: task has no owner, skipping charge")
		return
	}

	won, err := a.Registry.MarkCharged(ctx, task.TaskID)
	if err != nil {
		logger.Error().Err(err).Msg("callback: claim charge failed")
		return
	}
	if !won {
		logger.Debug().Msg("callback: charge already claimed")
		return
	}

	creditType := domain.CostFor(task.Kind, task.RequestParams.Resolution)
	charged, err := a.Ledger.Charge(ctx, task.OwnerUserID, creditType, task.TaskID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", task.OwnerUserID).Msg("callback: charge failed")
		return
	}
	if !charged {
		logger.Warn().
			Str("user_id", task.OwnerUserID).
			Str("credit_type", string(creditType)).
			Msg("callback: insufficient balance, artifact delivered unbilled")
	}
}

// failTask stores the vendor-reported failure as the terminal state.
func (a *App) failTask(ctx context.Context, logger zerolog.Logger, note vendor.Notification) {
	status := domain.TaskStatusFail
	if _, _, err := a.Registry.Update(ctx, note.TaskID, domain.TaskPatch{
		Status:       &status,
		ErrorMessage: &note.FailMsg,
	}); err != nil {
		logger.Error().Err(err).Msg("callback: persist failure failed")
	}
}

// ack always reports success to the vendor, suppressing its retry loop.
func (a *App) ack(w http.ResponseWriter) {
	a.json(w, http.StatusOK, map[string]string{"status": "received"})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
