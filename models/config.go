package models

type ConfigJsonData struct {
	EnvConfig    EnvConfig    `json:"env-config"`
	SimctlConfig SimctlConfig `json:"simctl-config"`
}

type EnvConfig struct {
	HostPort       string `json:"host_port"`
	ProviderFolder string `json:"provider_folder"`
	LogLevel       string `json:"log_level"`
}

type SimctlConfig struct {
	ToolName             string `json:"tool_name"`
	DefaultTimeoutMs     int    `json:"default_timeout_ms"`
	LaunchRetryAttempts  int    `json:"launch_retry_attempts"`
	LaunchRetryDelayMs   int    `json:"launch_retry_delay_ms"`
	EraseTimeoutBudgetMs int    `json:"erase_timeout_budget_ms"`
}
