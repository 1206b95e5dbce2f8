// Package config provides configuration management for bopprep.
//
// This package handles:
//   - Loading and saving settings from HCL files
//   - Default configuration values
//   - Validation of enumerated options
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// python converters, 10 processes
//	// wget + unzip for templates
//	// info level text logs
//
// # Loading from File
//
//	settings, err := config.Load("configs/machine.hcl")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// A file only needs the values it changes:
//
//	machine {
//	  root_dir = "${env.HOME}/gigapose"
//	}
//	templates {
//	  fetcher   = "http"
//	  extractor = "zip"
//	}
//
// # Saving Settings
//
//	settings.Machine.RootDir = "/data"
//	err := settings.Save("configs/machine.hcl")
package config
