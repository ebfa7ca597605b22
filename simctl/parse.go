package simctl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simfarm/simctl-provider/models"
)

// The tool emits two listing shapes. The section format groups devices
// under `-- <sdk> --` headers with 4-space indented device lines. The
// delimited format is one `|`-separated device per line. Which parser
// applies is decided by the invocation variant that produced the text,
// never by sniffing the content.
var (
	deviceSectionPattern = regexp.MustCompile(`(?m)^-- (.+?) --$(?:\n    .*)*`)
	deviceLinePattern    = regexp.MustCompile(`^\s*(.+?) \(([-a-zA-Z0-9]+)\) \((\w+ ?\w*)\)`)
	createEndedPattern   = regexp.MustCompile(`Create Ended: ([-a-zA-Z0-9]+)`)
)

// ParseDeviceSections parses the section format listing into an inventory
// keyed by SDK version. Each record is tagged with its owning SDK.
func ParseDeviceSections(output string) (models.DeviceInventory, error) {
	sections := deviceSectionPattern.FindAllStringSubmatch(output, -1)
	if len(sections) == 0 {
		return nil, &ParseError{Reason: "could not find device section"}
	}

	inventory := models.DeviceInventory{}
	for _, section := range sections {
		sdk := section[1]
		if _, ok := inventory[sdk]; !ok {
			inventory[sdk] = []models.SimDevice{}
		}

		lines := strings.Split(section[0], "\n")
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			match := deviceLinePattern.FindStringSubmatch(line)
			if match == nil {
				return nil, &ParseError{Reason: "could not parse device line", Line: strings.TrimSpace(line)}
			}
			inventory[sdk] = append(inventory[sdk], models.SimDevice{
				Name:  match[1],
				UDID:  match[2],
				State: match[3],
				Sdk:   sdk,
			})
		}
	}

	return inventory, nil
}

// ParseDelimitedDevices parses the delimited listing. Fields are
// `udid | name | state | arch | sdk`, the fourth field is accepted but
// unused. Records are filed under the SDK field without per-record tagging.
func ParseDelimitedDevices(output string) (models.DeviceInventory, error) {
	inventory := models.DeviceInventory{}
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) < 5 {
			return nil, &ParseError{Reason: "could not parse device line in delimited listing", Line: strings.TrimSpace(line)}
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		sdk := fields[4]
		inventory[sdk] = append(inventory[sdk], models.SimDevice{
			UDID:  fields[0],
			Name:  fields[1],
			State: fields[2],
		})
	}

	return inventory, nil
}

// ParseDelimitedDevicesForSdk filters the delimited listing down to one SDK.
func ParseDelimitedDevicesForSdk(output, sdk string) ([]models.SimDevice, error) {
	inventory, err := ParseDelimitedDevices(output)
	if err != nil {
		return nil, err
	}

	devices, ok := inventory[sdk]
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("unknown SDK `%s` in device listing", sdk)}
	}
	return devices, nil
}

// parseCreatedUdid extracts the new device udid from the final line of the
// create output, shaped like `Create Ended: <udid> | <name>, <sdk>`.
func parseCreatedUdid(output string) (string, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	lastLine := lines[len(lines)-1]

	match := createEndedPattern.FindStringSubmatch(lastLine)
	if match == nil {
		return "", &ParseError{Reason: "could not parse create output", Line: strings.TrimSpace(lastLine)}
	}
	return match[1], nil
}
