package recordstore

// Collection keys
const (
	KeyClients             = "clients"
	KeyEvents              = "events"
	KeyAssessmentTemplates = "assessmentTemplates"
	KeyAssessmentPacks     = "assessmentPacks"
	KeyJourneyTypes        = "journeyTypes"
	KeyUsers               = "users"
	KeyTasks               = "tasks"
	KeyAssessments         = "assessments"
	KeyOrganizations       = "organizations"
)

// Prefixes of the per-client collections
const (
	PrefixJourneyProgress   = "journey_progress"
	PrefixAssessmentResults = "assessment_results"
	PrefixTimelineEvents    = "timeline_events"
	PrefixInteractions      = "interactions"
)

// ClientKey returns the key of a per-client collection, e.g. timeline_events_<clientID>
func ClientKey(prefix, clientID string) string {
	return prefix + "_" + clientID
}

// ClientPrefixes lists the prefixes of every per-client collection
func ClientPrefixes() []string {
	return []string{PrefixJourneyProgress, PrefixAssessmentResults, PrefixTimelineEvents, PrefixInteractions}
}
