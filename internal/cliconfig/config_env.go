package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (NETBATCH_*). It respects flags that have already been explicitly set
// on the command line (changed). Returns an error if any environment
// variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("store-path", os.Getenv("NETBATCH_STORE_PATH"), &cfg.StorePath)

	if v := os.Getenv("NETBATCH_PRESET"); v != "" && !changed["preset"] {
		if err := ApplyPreset(cfg, v); err != nil {
			return err
		}
	}

	if err := s.setDuration("http-timeout", os.Getenv("NETBATCH_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll-interval", os.Getenv("NETBATCH_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("max-deferral-time", os.Getenv("NETBATCH_MAX_DEFERRAL_TIME"), &cfg.MaxDeferralTime); err != nil {
		return err
	}
	if err := s.setDuration("min-batch-interval", os.Getenv("NETBATCH_MIN_BATCH_INTERVAL"), &cfg.MinBatchInterval); err != nil {
		return err
	}
	if err := s.setDuration("piggyback-window", os.Getenv("NETBATCH_PIGGYBACK_WINDOW"), &cfg.PiggybackWindow); err != nil {
		return err
	}

	if err := s.setIntFromString("max-queue-size", os.Getenv("NETBATCH_MAX_QUEUE_SIZE"), &cfg.MaxQueueSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-payload-size", os.Getenv("NETBATCH_MAX_PAYLOAD_SIZE"), &cfg.MaxPayloadSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-size", os.Getenv("NETBATCH_MAX_BATCH_SIZE"), &cfg.MaxBatchSize); err != nil {
		return err
	}

	s.setBoolFromString("prefer-wifi", os.Getenv("NETBATCH_PREFER_WIFI"), &cfg.PreferWiFi)
	s.setBoolFromString("prefer-charging", os.Getenv("NETBATCH_PREFER_CHARGING"), &cfg.PreferCharging)
	s.setBoolFromString("piggyback-on-user-requests", os.Getenv("NETBATCH_PIGGYBACK_ON_USER_REQUESTS"), &cfg.PiggybackOnUserRequests)
	s.setBoolFromString("flush-on-background", os.Getenv("NETBATCH_FLUSH_ON_BACKGROUND"), &cfg.FlushOnBackground)
	s.setBoolFromString("allow-cellular", os.Getenv("NETBATCH_ALLOW_CELLULAR"), &cfg.AllowCellular)
	s.setBoolFromString("require-wifi-for-bulk", os.Getenv("NETBATCH_REQUIRE_WIFI_FOR_BULK"), &cfg.RequireWiFiForBulk)
	s.setBoolFromString("enable-logging", os.Getenv("NETBATCH_ENABLE_LOGGING"), &cfg.EnableLogging)
	s.setBoolFromString("enable-metrics", os.Getenv("NETBATCH_ENABLE_METRICS"), &cfg.EnableMetrics)

	s.setStringSliceFromCSV("immediate-domains", os.Getenv("NETBATCH_IMMEDIATE_DOMAINS"), &cfg.ImmediateDomains)
	s.setStringSliceFromCSV("deferrable-domains", os.Getenv("NETBATCH_DEFERRABLE_DOMAINS"), &cfg.DeferrableDomains)

	return nil
}
