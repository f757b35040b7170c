package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/kubeuno/kubeuno/internal/provisioning"
)

const osReleasePath = "/etc/os-release"

// Info describes the detected operating system.
type Info struct {
	Family     string // provisioning.FamilyDebian or provisioning.FamilyRHEL
	PrettyName string
}

// Detect identifies the host OS family from /etc/os-release. An OS outside
// the two supported families is a fatal condition: the pipeline refuses to
// run rather than guess at package manager behavior.
func Detect(ctx context.Context, runner provisioning.Runner) (*Info, error) {
	data, err := runner.ReadFile(ctx, osReleasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", osReleasePath, err)
	}

	fields := parseOSRelease(string(data))

	info := &Info{PrettyName: fields["PRETTY_NAME"]}
	if info.PrettyName == "" {
		info.PrettyName = fields["NAME"]
	}

	ids := append([]string{fields["ID"]}, strings.Fields(fields["ID_LIKE"])...)
	for _, id := range ids {
		switch id {
		case "debian", "ubuntu":
			info.Family = provisioning.FamilyDebian
			return info, nil
		case "rhel", "centos", "fedora", "rocky", "almalinux":
			info.Family = provisioning.FamilyRHEL
			return info, nil
		}
	}

	return nil, fmt.Errorf("unsupported operating system %q (supported families: debian, rhel)", info.PrettyName)
}

// parseOSRelease parses the KEY=value lines of an os-release file.
func parseOSRelease(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields
}
