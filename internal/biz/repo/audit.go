package repo

import "github.com/rsdeals/discord-bridge/internal/biz/domain"

// AuditRepo appends entries to one of the logical audit logs
// (domain.LogFiltered, domain.LogD2D, domain.LogBot). Appends are
// best-effort from the caller's point of view: the store deduplicates,
// scrubs and caps entries on its own.
type AuditRepo interface {
	Append(logName string, entry domain.Entry) error
}
