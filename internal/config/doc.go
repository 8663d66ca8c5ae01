// Package config loads the service configuration from code defaults,
// optional YAML or JSON files and environment variables, in that order of
// increasing priority.
//
// Files live in the directory named by CONFIG_DIR (default "config"):
//
//	config/
//	├── base.yaml         # shared by every environment
//	├── development.yaml  # overrides for ENVIRONMENT=development
//	└── production.yaml   # overrides for ENVIRONMENT=production
//
// In development a Watcher reloads the files when they change and notifies
// subscribers, which is how the log level can be changed without a restart.
package config
