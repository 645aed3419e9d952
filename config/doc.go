// Package config loads MemoryMesh configuration from YAML or TOML files.
//
// The file format is chosen by extension (.toml for TOML, anything else is
// parsed as YAML). ${VAR_NAME} references are expanded from the environment
// before parsing, so credentials can stay out of the file:
//
//	backend:
//	  driver: http
//	  user_id: user-123
//	  api_key: ${MEMPHORA_API_KEY}
package config
