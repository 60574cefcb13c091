// Package config handles loading and validating Gray Logic Studio configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading a .env file into the environment
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	if err := config.LoadDotenv(""); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load("configs/studio.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Studio.Name)
package config
