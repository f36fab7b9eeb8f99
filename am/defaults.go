package am

import (
	"github.com/spf13/viper"
)

// Default values that are referenced outside SetDefaults
const (
	DefaultUsername   = "World Bank GIS Monitor"
	DefaultUserAgent  = "WB-GIS-Monitor-Agent/1.0"
	DefaultWebhookURL = "https://discordapp.com/api/webhooks/REPLACE_ME"
	DefaultConfigName = "wbwatch.toml"

	DefaultDirPermissions = 0o750
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("webhook.url", DefaultWebhookURL)
	v.SetDefault("webhook.username", DefaultUsername)

	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_seconds", 3) // linear: 3s, 6s, 9s
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.block_private_ip", true)

	v.SetDefault("region.country_code", "NG")
	v.SetDefault("region.country_name", "Nigeria")

	v.SetDefault("keywords.terms", DefaultKeywords())
	v.SetDefault("keywords.file", "")
	v.SetDefault("keywords.contractor_terms", DefaultContractorTerms())

	v.SetDefault("streams.projects.enabled", true)
	v.SetDefault("streams.projects.url", "https://search.worldbank.org/api/v2/projects")
	v.SetDefault("streams.projects.rows_per_page", 50)
	v.SetDefault("streams.projects.max_pages", 0)
	v.SetDefault("streams.projects.status", "Active")
	v.SetDefault("streams.projects.state_file", "processed_projects.json")

	v.SetDefault("streams.procurement_plans.enabled", true)
	v.SetDefault("streams.procurement_plans.url", "https://search.worldbank.org/api/v3/wds")
	v.SetDefault("streams.procurement_plans.rows_per_page", 200)
	v.SetDefault("streams.procurement_plans.max_pages", 1) // newest plans only; the service sorts by date
	v.SetDefault("streams.procurement_plans.document_type", "Procurement Plan")
	v.SetDefault("streams.procurement_plans.state_file", "processed_docs.json")

	v.SetDefault("streams.tenders.enabled", false)
	v.SetDefault("streams.tenders.url", "https://datacatalogapi.worldbank.org/dexapps/fone/api/data")
	v.SetDefault("streams.tenders.rows_per_page", 500)
	v.SetDefault("streams.tenders.max_pages", 1)
	v.SetDefault("streams.tenders.asset_id", "DS00979")
	v.SetDefault("streams.tenders.query", "GIS geospatial mapping remote sensing land administration")
	v.SetDefault("streams.tenders.state_file", "processed_tenders.json")

	v.SetDefault("streams.awards.enabled", false)
	v.SetDefault("streams.awards.url", "https://datacatalogapi.worldbank.org/dexapps/fone/api/data")
	v.SetDefault("streams.awards.rows_per_page", 500)
	v.SetDefault("streams.awards.max_pages", 1)
	v.SetDefault("streams.awards.asset_id", "DS01666")
	v.SetDefault("streams.awards.query", "GIS geospatial mapping remote sensing land administration")
	v.SetDefault("streams.awards.state_file", "processed_awards.json")

	v.SetDefault("state.backend", BackendJSON)
	v.SetDefault("state.dir", ".")
	v.SetDefault("state.database_path", "wbwatch.db")
	v.SetDefault("state.monitor_file", "monitor_state.json")
	v.SetDefault("state.lock", true)
	v.SetDefault("state.s3.enabled", false)
	v.SetDefault("state.s3.bucket", "")
	v.SetDefault("state.s3.prefix", "wbwatch/state")
	v.SetDefault("state.s3.region", "us-east-1")
	v.SetDefault("state.s3.endpoint", "")
	v.SetDefault("state.s3.access_key_id", "")
	v.SetDefault("state.s3.secret_access_key", "")
	v.SetDefault("state.s3.use_path_style", false)

	v.SetDefault("heartbeat.enabled", true)
	v.SetDefault("heartbeat.weekday", "monday")
	v.SetDefault("heartbeat.timezone", "")

	v.SetDefault("notify.channel", ChannelDiscord)
	v.SetDefault("notify.max_per_minute", 30) // Discord allows 30 webhook posts per minute per channel

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)

	v.SetDefault("log.theme", "everforest")
	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars binds secrets to explicit environment variables.
// WB_DISCORD_WEBHOOK_URL is the name existing deployments export.
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("webhook.url", "WBWATCH_WEBHOOK_URL", "WB_DISCORD_WEBHOOK_URL")
	_ = v.BindEnv("telegram.token", "WBWATCH_TELEGRAM_TOKEN")
	_ = v.BindEnv("state.s3.access_key_id", "WBWATCH_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("state.s3.secret_access_key", "WBWATCH_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
}

// DefaultKeywords returns the built-in relevance terms for GIS and adjacent work.
func DefaultKeywords() []string {
	return []string{
		// Core GIS / spatial
		"GIS", "Geographic Information System", "Geospatial", "Geo-spatial", "Spatial",
		"Spatial Data", "Spatial Analysis", "Spatial Analytics", "Spatial Planning",
		"Location Intelligence", "Geo-data", "Location Data", "Location-based",

		// Mapping / cartography
		"Mapping", "Map", "Cartography", "Topographic", "Topography", "Base Map", "Basemap",

		// Remote sensing / imagery
		"Remote Sensing", "Earth Observation", "EO Data", "Satellite", "Satellite Imagery",
		"Imagery", "Image Analysis", "LiDAR", "Raster Data",

		// Drones / aerial surveys
		"UAV", "Drone", "Aerial Survey", "Aerial Photography",

		// Surveying / land administration
		"GNSS", "GPS", "Survey", "Surveying", "Land Survey", "Cadastral", "Cadastre",
		"Land Administration", "Land Registration", "Land Use", "Parcel", "Parcel Mapping",
		"Boundary", "Boundary Mapping", "Geodetic",

		// Environment / climate / DRM
		"Environmental Monitoring", "Environmental Information System", "Natural Resource Mapping",
		"Natural Resource Management", "Watershed Management", "Hydrological Modeling", "Hydrology",
		"Flood Risk Mapping", "Flood Hazard Mapping", "Disaster Risk Mapping",
		"Disaster Risk Management", "DRM Platform", "Climate Risk Mapping",
		"Climate Risk Assessment", "Climate Vulnerability", "Vulnerability Mapping",
		"Coastal Erosion Mapping", "Ecosystem Mapping", "Habitat Mapping", "Biodiversity Mapping",
		"Climate Resilience",

		// Urban / transport planning
		"Urban Spatial Planning", "Urban Planning", "Transport Modeling", "Accessibility Analysis",
		"Network Analysis",

		// Health / epidemiology
		"Health Mapping", "Disease Mapping", "Epidemiological Mapping", "Spatial Epidemiology",
		"Disease Hotspot", "Hotspot Mapping", "Disease Surveillance", "Outbreak Mapping",
		"Health Facility Mapping", "Service Coverage Mapping",
	}
}

// DefaultContractorTerms returns the terms appended to contractor search links.
func DefaultContractorTerms() []string {
	return []string{
		"GIS", "geospatial", "spatial analysis", "spatial analytics", "mapping", "remote sensing",
		"satellite imagery", "drone survey", "land administration", "cadastral mapping",
		"surveying", "spatial data",

		"environmental monitoring", "natural resource management", "watershed management",
		"hydrology", "flood risk", "disaster risk management", "climate risk", "climate resilience",

		"health mapping", "disease surveillance", "epidemiology",

		"consultant", "consulting", "technical assistance", "implementation",
		"implementation partner", "engineering", "engineering firm",
	}
}
