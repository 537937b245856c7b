package catalog

// DefaultModules is the catalog loaded when no external module feed is
// configured.
var DefaultModules = []Module{
	{
		ID:            "m1",
		Title:         "Analytics Suite",
		Category:      "analytics",
		RequiredRole:  "viewer",
		Version:       "2.4.1",
		Status:        ModuleActive,
		Size:          "4.2 MB",
		DownloadCount: 1893,
	},
	{
		ID:            "m2",
		Title:         "CRM Connector",
		Category:      "integrations",
		RequiredRole:  "developer",
		Version:       "1.8.0",
		Status:        ModuleActive,
		Size:          "2.7 MB",
		DownloadCount: 1240,
	},
	{
		ID:            "m3",
		Title:         "Billing Engine",
		Category:      "finance",
		RequiredRole:  "admin",
		Version:       "3.0.2",
		Status:        ModuleActive,
		Size:          "6.1 MB",
		DownloadCount: 742,
	},
	{
		ID:            "m4",
		Title:         "Report Builder",
		Category:      "reporting",
		RequiredRole:  "viewer",
		Version:       "1.2.5",
		Status:        ModuleBeta,
		Size:          "3.4 MB",
		DownloadCount: 389,
	},
	{
		ID:            "m5",
		Title:         "Legacy Importer",
		Category:      "integrations",
		RequiredRole:  "developer",
		Version:       "0.9.7",
		Status:        ModuleDeprecated,
		Size:          "1.9 MB",
		DownloadCount: 2010,
	},
}
