// Package config provides configuration loading for vdiff.
//
// Settings come from defaults, an optional vdiff.yaml (searched in the
// working directory and $HOME, or given explicitly) and VDIFF_* environment
// variables, in increasing priority.
//
// # Configuration File Structure
//
//	server:
//	  host: localhost
//	  port: 7420
//	  read_timeout: 10s
//	  write_timeout: 10s
//	  max_message_size: 1048576
//	store:
//	  uri: s3://snapshots/trees
//	  s3:
//	    region: eu-west-1
//	    endpoint: http://localhost:9000
//	    path_style: true
//	protocol:
//	  compress: true
//	  compress_threshold: 512
//	log:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	  namespace: vdiff
//
// Nested keys map to environment variables with "." replaced by "_":
// VDIFF_SERVER_PORT=9000, VDIFF_STORE_S3_REGION=eu-west-1.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
