package simctl

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simfarm/simctl-provider/models"
	"github.com/simfarm/simctl-provider/util"
)

// InstallApp installs the app bundle at appPath on the simulator.
func (c *Client) InstallApp(udid, appPath string) error {
	_, err := c.Invoke(models.CommandSpec{Subcommand: "install", Args: []string{udid, appPath}}, c.Tuning().Timeout)
	return err
}

func (c *Client) RemoveApp(udid, bundleID string) error {
	_, err := c.Invoke(models.CommandSpec{Subcommand: "uninstall", Args: []string{udid, bundleID}}, c.Tuning().Timeout)
	return err
}

func (c *Client) OpenUrl(udid, url string) error {
	_, err := c.Invoke(models.CommandSpec{Subcommand: "openurl", Args: []string{udid, url}}, c.Tuning().Timeout)
	return err
}

func (c *Client) Terminate(udid, bundleID string) error {
	_, err := c.Invoke(models.CommandSpec{Subcommand: "terminate", Args: []string{udid, bundleID}}, c.Tuning().Timeout)
	return err
}

func (c *Client) Boot(udid string) error {
	c.Logger.LogInfo("boot_device", fmt.Sprintf("Booting simulator `%s`", udid))
	_, err := c.Invoke(models.CommandSpec{Subcommand: "boot", Args: []string{udid}}, c.Tuning().Timeout)
	return err
}

func (c *Client) Shutdown(udid string) error {
	c.Logger.LogInfo("shutdown_device", fmt.Sprintf("Shutting down simulator `%s`", udid))
	_, err := c.Invoke(models.CommandSpec{Subcommand: "shutdown", Args: []string{udid}}, c.Tuning().Timeout)
	return err
}

func (c *Client) DeleteDevice(udid string) error {
	c.Logger.LogInfo("delete_device", fmt.Sprintf("Deleting simulator `%s`", udid))
	_, err := c.Invoke(models.CommandSpec{Subcommand: "delete", Args: []string{udid}}, c.Tuning().Timeout)
	return err
}

// GetAppContainer returns the container path of an installed app. A missing
// bundle is an expected outcome for callers probing for installed apps, so
// the failure is propagated without being logged as an error.
func (c *Client) GetAppContainer(udid, bundleID string) (string, error) {
	result, err := c.invoke(c.Runner, models.CommandSpec{Subcommand: "get_app_container", Args: []string{udid, bundleID}}, c.Tuning().Timeout, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Spawn runs an executable inside the simulator to completion and returns
// its trimmed output. Environment overrides are threaded through to the
// spawned process via the child-env prefix.
func (c *Client) Spawn(udid, executablePath string, env map[string]string, args ...string) (string, error) {
	spawnArgs := append([]string{udid, executablePath}, args...)
	result, err := c.Invoke(models.CommandSpec{Subcommand: "spawn", Args: spawnArgs, Env: env}, c.Tuning().Timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// SpawnSubProcess starts a long-running executable inside the simulator and
// returns as soon as the process handle exists, without waiting for exit.
func (c *Client) SpawnSubProcess(udid, executablePath string, env map[string]string, args ...string) error {
	spawnArgs := append([]string{udid, executablePath}, args...)
	_, err := c.invoke(c.Spawner, models.CommandSpec{Subcommand: "spawn", Args: spawnArgs, Env: env}, 0, true)
	return err
}

// CreateDevice creates a new simulator device and returns its udid parsed
// from the create output. Any tool or parse failure surfaces as a
// CreationError carrying the device type and runtime identifiers.
func (c *Client) CreateDevice(name, deviceTypeID, runtimeID string) (string, error) {
	result, err := c.Invoke(models.CommandSpec{Subcommand: "create", Args: []string{name, deviceTypeID, runtimeID}}, c.Tuning().Timeout)
	if err != nil {
		return "", &CreationError{DeviceType: deviceTypeID, Runtime: runtimeID, Err: err}
	}

	udid, err := parseCreatedUdid(result.Stdout)
	if err != nil {
		return "", &CreationError{DeviceType: deviceTypeID, Runtime: runtimeID, Err: err}
	}

	c.Logger.LogInfo("create_device", fmt.Sprintf("Created simulator `%s` of type `%s` with runtime `%s`", udid, deviceTypeID, runtimeID))
	return udid, nil
}

// Launch launches an app on the simulator. A just-created device may not be
// ready to accept commands yet, so the launch is retried with a delay.
func (c *Client) Launch(udid, bundleID string, env map[string]string) (string, error) {
	tuning := c.Tuning()
	return util.Retry(tuning.LaunchRetryAttempts, tuning.LaunchRetryDelay, func() (string, error) {
		result, err := c.Invoke(models.CommandSpec{Subcommand: "launch", Args: []string{udid, bundleID}, Env: env}, tuning.Timeout)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(result.Stdout), nil
	})
}

// EraseDevice erases the simulator's contents and settings, retrying in
// short slots within the configured wall-clock budget.
func (c *Client) EraseDevice(udid string) error {
	attempts := int(c.Tuning().EraseTimeoutBudget / eraseRetryDelay)
	_, err := util.Retry(attempts, eraseRetryDelay, func() (struct{}, error) {
		_, invokeErr := c.Invoke(models.CommandSpec{Subcommand: "erase", Args: []string{udid}}, eraseAttemptTimeout)
		return struct{}{}, invokeErr
	})
	return err
}

// GetScreenshot captures a PNG screenshot of the simulator screen and
// returns it base64 encoded. The temporary capture path is removed whether
// or not reading it succeeded.
func (c *Client) GetScreenshot(udid string) (string, error) {
	screenshotPath := c.Paths.TempPath("simctl_screenshot_", ".png")
	defer func() {
		if err := c.Paths.Remove(screenshotPath); err != nil {
			c.Logger.LogWarn("get_screenshot", fmt.Sprintf("Could not remove temporary screenshot `%s` - %v", screenshotPath, err))
		}
	}()

	_, err := c.Invoke(models.CommandSpec{Subcommand: "io", Args: []string{udid, "screenshot", screenshotPath}}, c.Tuning().Timeout)
	if err != nil {
		return "", err
	}

	data, err := c.Paths.ReadFile(screenshotPath)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// RuntimeIdentifier looks up the runtime identifier for a platform string,
// e.g. `iOS 14.4`, in the JSON runtimes listing. The second return value is
// false when no runtime name matches.
func (c *Client) RuntimeIdentifier(platform string) (string, bool, error) {
	result, err := c.Invoke(models.CommandSpec{Subcommand: "list", Args: []string{"runtimes", "-j"}}, c.Tuning().Timeout)
	if err != nil {
		return "", false, err
	}

	var runtimes models.SimctlRuntimes
	if err := json.Unmarshal([]byte(result.Stdout), &runtimes); err != nil {
		return "", false, &ParseError{Reason: fmt.Sprintf("could not parse runtimes listing - %v", err)}
	}

	for _, runtime := range runtimes.Runtimes {
		if runtime.Name == platform {
			return runtime.Identifier, true, nil
		}
	}
	return "", false, nil
}

// ListDevices returns the device inventory from the plain section-format
// listing.
func (c *Client) ListDevices() (models.DeviceInventory, error) {
	result, err := c.Invoke(models.CommandSpec{Subcommand: "list", Args: []string{"devices"}}, c.Tuning().Timeout)
	if err != nil {
		return nil, err
	}
	return ParseDeviceSections(result.Stdout)
}

// ListDevicesForSdk returns one SDK's devices from the alternate, delimited
// list mode.
func (c *Client) ListDevicesForSdk(sdk string) ([]models.SimDevice, error) {
	result, err := c.Invoke(models.CommandSpec{Subcommand: "list"}, c.Tuning().Timeout)
	if err != nil {
		return nil, err
	}
	return ParseDelimitedDevicesForSdk(result.Stdout, sdk)
}

// DevicesData returns the typed JSON device listing.
func (c *Client) DevicesData() (models.SimctlDevices, error) {
	result, err := c.Invoke(models.CommandSpec{Subcommand: "list", Args: []string{"devices", "-je"}}, c.Tuning().Timeout)
	if err != nil {
		return models.SimctlDevices{}, err
	}

	var simData models.SimctlDevices
	if err := json.Unmarshal([]byte(result.Stdout), &simData); err != nil {
		return models.SimctlDevices{}, &ParseError{Reason: fmt.Sprintf("could not parse devices listing - %v", err)}
	}
	return simData, nil
}

// BootedDevices returns all devices currently in the Booted state.
func (c *Client) BootedDevices() ([]models.SimctlDevice, error) {
	simData, err := c.DevicesData()
	if err != nil {
		return []models.SimctlDevice{}, err
	}

	var bootedSims []models.SimctlDevice
	for _, devices := range simData.SimctlDevice {
		for _, device := range devices {
			if device.State == "Booted" {
				bootedSims = append(bootedSims, device)
			}
		}
	}
	return bootedSims, nil
}

// AvailableDevices returns all devices whose runtime is available.
func (c *Client) AvailableDevices() ([]models.SimctlDevice, error) {
	simData, err := c.DevicesData()
	if err != nil {
		return []models.SimctlDevice{}, err
	}

	var availableSims []models.SimctlDevice
	for _, devices := range simData.SimctlDevice {
		for _, device := range devices {
			if device.IsAvailable {
				availableSims = append(availableSims, device)
			}
		}
	}
	return availableSims, nil
}
