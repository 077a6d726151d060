package auditlog

import (
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"

	"github.com/kelviy/leadtime-order-sync/internal/repository"
	"github.com/kelviy/leadtime-order-sync/pkg/models"
)

// Auditable is anything that knows how to describe itself as an audit row.
type Auditable interface {
	CreateLogView() models.AuditLog
}

type Auditlog struct {
	r   *repository.Repository
	log *zap.Logger
}

func NewAuditLog(r *repository.Repository, log *zap.Logger) *Auditlog {
	return &Auditlog{r: r, log: log}
}

// Log records an action against a resource. Auditing is best-effort: a
// failed insert is logged and swallowed, it never fails the action itself.
func (a *Auditlog) Log(action string, data interface{}, item Auditable, userID *int) {
	entry := item.CreateLogView()
	entry.Action = action
	entry.UserID = userID

	if err := a.persist(entry, data); err != nil {
		a.log.Warn("Unable to create audit log entry",
			zap.Int("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

func (a *Auditlog) persist(entry models.AuditLog, data interface{}) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	query := a.r.GoquDBWrapper.Insert("audit_logs").
		Rows(goqu.Record{
			"resource_id":   entry.ResourceID,
			"resource_type": entry.ResourceType,
			"action":        entry.Action,
			"data":          dataJSON,
			"user_id":       entry.UserID,
		})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
