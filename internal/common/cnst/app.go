package cnst

// AppName is the application name used in logs and metrics namespaces
const AppName = "enrollflow"

// XLang is the context/header key carrying the client language preference
const XLang = "X-Lang"

// Supported languages
const (
	LangEN = "en"
	LangZH = "zh"
)

// Lead source classifications
const (
	LeadSourceManual       = "manual"
	LeadSourceForm         = "form"
	LeadSourceAgentLanding = "agent_landing"
	LeadSourceImport       = "import"
	LeadSourceCSVImport    = "csv_import"
	LeadSourceWebsite      = "website"
	LeadSourceAd           = "ad"
)

// Lead visibility policies, configured per tenant
const (
	VisibilityAssignedOnly = "assigned_only"
	VisibilityAllLeads     = "all_leads"
)

// Audit action tags
const (
	AuditLeadCreated   = "lead.created"
	AuditLeadMoved     = "lead.stage_moved"
	AuditLeadAssigned  = "lead.agent_assigned"
	AuditLeadScored    = "lead.score_updated"
	AuditStagesSaved   = "stage.batch_saved"
	AuditTenantCreated = "tenant.created"
	AuditTenantUpdated = "tenant.updated"
	AuditUserCreated   = "user.created"
	AuditUserRole      = "user.role_changed"
)

// Honeypot form field; bots fill it, humans never see it
const HoneypotField = "website_url"
