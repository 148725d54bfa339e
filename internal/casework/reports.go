package casework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"casedesk/internal/blob"
	"casedesk/internal/model"
	"casedesk/internal/recordstore"

	"go.uber.org/zap"
)

// Dashboard is the summary shown on the landing page of each role
type Dashboard struct {
	Role                string             `json:"role"`
	Counts              map[string]int     `json:"counts"`
	ClientsByStatus     map[string]int     `json:"clientsByStatus,omitempty"`
	ClientsByJourney    map[string]int     `json:"clientsByJourney,omitempty"`
	AssessmentsByStatus map[string]int     `json:"assessmentsByStatus,omitempty"`
	UsersByRole         map[string]int     `json:"usersByRole,omitempty"`
	UpcomingEvents      []model.Event      `json:"upcomingEvents,omitempty"`
	DueAssessments      []model.Assessment `json:"dueAssessments,omitempty"`
	OpenTasks           []model.Task       `json:"openTasks,omitempty"`
}

// DashboardLimit bounds the lists in a dashboard
const DashboardLimit = 5

// Dashboard builds the dashboard for role. Case workers see their own open
// tasks; admins also get user counts; super admins get counts across tenants
// when scope covers all of them.
func (s *Service) Dashboard(ctx context.Context, scope Scope, role, userID string) (Dashboard, error) {
	clients, err := s.Clients.All(ctx, scope)
	if err != nil {
		return Dashboard{}, err
	}
	assessments, err := s.Assessments.All(ctx, scope)
	if err != nil {
		return Dashboard{}, err
	}
	events, err := s.Events.All(ctx, scope)
	if err != nil {
		return Dashboard{}, err
	}
	tasks, err := s.Tasks.All(ctx, scope)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Role: role,
		Counts: map[string]int{
			recordstore.KeyClients:     len(clients),
			recordstore.KeyAssessments: len(assessments),
			recordstore.KeyEvents:      len(events),
			recordstore.KeyTasks:       len(tasks),
		},
		ClientsByStatus:     countBy(clients, func(c model.Client) string { return c.Status }),
		AssessmentsByStatus: countBy(assessments, func(a model.Assessment) string { return a.Status }),
	}

	today := s.now().Truncate(24 * time.Hour)
	upcoming := slices.DeleteFunc(slices.Clone(events), func(e model.Event) bool { return e.When().Before(today) })
	slices.SortStableFunc(upcoming, func(a, b model.Event) int { return a.When().Compare(b.When()) })
	d.UpcomingEvents = upcoming[:min(len(upcoming), DashboardLimit)]

	due := slices.DeleteFunc(slices.Clone(assessments), func(a model.Assessment) bool { return a.Status == model.AssessmentCompleted })
	slices.SortStableFunc(due, func(a, b model.Assessment) int { return a.ScheduledFor.Compare(b.ScheduledFor) })
	d.DueAssessments = due[:min(len(due), DashboardLimit)]

	open := slices.DeleteFunc(slices.Clone(tasks), func(t model.Task) bool {
		return t.Status == model.TaskDone || (role == model.RoleCaseWorker && t.AssigneeID != userID)
	})
	d.OpenTasks = open[:min(len(open), DashboardLimit)]

	if role == model.RoleAdmin || role == model.RoleSuperAdmin {
		users, err := s.Users.All(ctx, scope)
		if err != nil {
			return Dashboard{}, err
		}
		d.Counts[recordstore.KeyUsers] = len(users)
		d.UsersByRole = countBy(users, func(u model.User) string { return u.Role })
		d.ClientsByJourney = countBy(clients, func(c model.Client) string { return c.JourneyType })
	}
	return d, nil
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		k := key(it)
		if k == "" {
			k = "unknown"
		}
		out[k]++
	}
	return out
}

// ExportResult describes a stored export
type ExportResult struct {
	blob.Info
	Driver      string         `json:"driver"`
	URL         string         `json:"url,omitempty"`
	Collections map[string]int `json:"collections"`
}

// Export is the document written by Export
type Export struct {
	ExportedAt  time.Time                   `json:"exportedAt"`
	TenantID    string                      `json:"tenantId,omitempty"`
	Collections map[string][]map[string]any `json:"collections"`
}

// ExportableKeys are the tenant scoped collections included in an export by default
var ExportableKeys = []string{
	recordstore.KeyClients,
	recordstore.KeyEvents,
	recordstore.KeyAssessments,
	recordstore.KeyAssessmentTemplates,
	recordstore.KeyAssessmentPacks,
	recordstore.KeyJourneyTypes,
	recordstore.KeyTasks,
}

// Export writes a JSON snapshot of the collections in scope to the blob store.
// With no keys given the default collections and every per-client collection
// are exported. Records of other tenants are left out. Users are never
// exportable. A presigned URL is returned when the driver supports one.
func (s *Service) Export(ctx context.Context, scope Scope, store blob.Store, keys []string, expiry time.Duration) (ExportResult, error) {
	if len(keys) == 0 {
		var err error
		if keys, err = s.exportKeys(ctx); err != nil {
			return ExportResult{}, err
		}
	}

	doc := Export{ExportedAt: s.now().UTC(), TenantID: scope.TenantID, Collections: make(map[string][]map[string]any)}
	counts := make(map[string]int)
	for _, key := range keys {
		if !exportable(key) {
			return ExportResult{}, fmt.Errorf("%w: collection %q cannot be exported", ErrValidation, key)
		}
		docs, err := s.store.Documents(ctx, key)
		if err != nil {
			return ExportResult{}, fmt.Errorf("export %s: %w", key, err)
		}
		docs = slices.DeleteFunc(docs, func(d map[string]any) bool {
			tenant, _ := d["tenantId"].(string)
			return !scope.Allows(model.Record{TenantID: tenant})
		})
		if len(docs) == 0 {
			continue
		}
		doc.Collections[key] = docs
		counts[key] = len(docs)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode export: %w", err)
	}
	owner := scope.TenantID
	if owner == "" {
		owner = "all"
	}
	name := fmt.Sprintf("exports/%s/%s-%s.json", owner, doc.ExportedAt.Format("20060102T150405Z"), s.newID())
	info, err := store.Put(ctx, name, data, "application/json")
	if err != nil {
		return ExportResult{}, fmt.Errorf("store export: %w", err)
	}

	res := ExportResult{Info: info, Driver: store.Driver(), Collections: counts}
	url, err := store.PresignURL(ctx, info.Key, expiry)
	switch {
	case err == nil:
		res.URL = url
	case errors.Is(err, blob.ErrUnsupported):
	default:
		s.log.Warn("Could not presign export URL", zap.String("key", info.Key), zap.Error(err))
	}
	s.log.Info("Export written", zap.String("key", info.Key), zap.Int64("bytes", info.Size), zap.String("driver", res.Driver))
	return res, nil
}

func exportable(key string) bool {
	if slices.Contains(ExportableKeys, key) {
		return true
	}
	for _, prefix := range recordstore.ClientPrefixes() {
		if strings.HasPrefix(key, prefix+"_") {
			return recordstore.ValidateKey(key) == nil
		}
	}
	return false
}

func (s *Service) exportKeys(ctx context.Context) ([]string, error) {
	stored, err := s.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	keys := slices.Clone(ExportableKeys)
	for _, key := range stored {
		if exportable(key) && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
