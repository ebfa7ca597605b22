package models

// SimDevice is a single simulator device parsed out of `simctl list` output.
// Sdk is populated only by the section format listing, the delimited format
// keys the inventory by SDK without tagging each record.
type SimDevice struct {
	Name  string `json:"name"`
	UDID  string `json:"udid"`
	State string `json:"state"`
	Sdk   string `json:"sdk,omitempty"`
}

// DeviceInventory maps an SDK version string, e.g. `iOS 14.4`, to the
// devices of that runtime in the order they appeared in the tool output.
type DeviceInventory map[string][]SimDevice

// CommandSpec describes a single simctl invocation. A fresh spec is built
// per call so environment overrides never leak between commands.
type CommandSpec struct {
	Subcommand string
	Args       []string
	Env        map[string]string
}

// ExecutionResult holds the captured output of a finished invocation.
type ExecutionResult struct {
	Stdout string
	Stderr string
}

type SimctlDevice struct {
	AvailabilityError    string `json:"availabilityError"`
	DataPath             string `json:"dataPath"`
	UDID                 string `json:"udid"`
	IsAvailable          bool   `json:"isAvailable"`
	DeviceTypeIdentifier string `json:"deviceTypeIdentifier"`
	State                string `json:"state"`
	Name                 string `json:"name"`
	LastBootedAt         string `json:"lastBootedAt,omitempty"`
}

type SimctlDevices struct {
	SimctlDevice map[string][]SimctlDevice `json:"devices"`
}

type SimctlRuntime struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	BuildVersion string `json:"buildversion"`
	IsAvailable  bool   `json:"isAvailable"`
}

type SimctlRuntimes struct {
	Runtimes []SimctlRuntime `json:"runtimes"`
}
