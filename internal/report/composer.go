// Package report builds the deterministic markdown report from a set of
// inspected container records. Composition is pure: the same records and
// timestamp always yield the same markdown.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dockreport/dockreport/internal/inventory"
)

const (
	noMountsPlaceholder = "No volumes mounted."
	noEnvPlaceholder    = "No environment variables set."
	noMemoryPlaceholder = "none"
)

// Compose renders the deterministic report and the compose-project
// grouping. Records without a compose project label are omitted from the
// grouping but still listed individually.
func Compose(records []inventory.ContainerRecord, generatedAt time.Time) (string, map[string][]inventory.ContainerRecord) {
	groups := GroupByProject(records)

	var b strings.Builder
	b.WriteString("# Docker Containers Report\n")
	fmt.Fprintf(&b, "**Generated on %s**\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "Total running containers: %d\n\n", len(records))

	if len(groups) > 0 {
		b.WriteString("## Compose Projects\n\n")
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			members := make([]string, 0, len(groups[name]))
			for _, rec := range groups[name] {
				members = append(members, rec.Name)
			}
			fmt.Fprintf(&b, "- **%s** (%d): %s\n", name, len(members), strings.Join(members, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Container Details\n\n")
	for _, rec := range records {
		writeContainer(&b, rec)
	}

	return b.String(), groups
}

// GroupByProject buckets records by their compose project label. Records
// without the label are left out.
func GroupByProject(records []inventory.ContainerRecord) map[string][]inventory.ContainerRecord {
	groups := map[string][]inventory.ContainerRecord{}
	for _, rec := range records {
		if rec.ComposeProject != "" {
			groups[rec.ComposeProject] = append(groups[rec.ComposeProject], rec)
		}
	}
	return groups
}

func writeContainer(b *strings.Builder, rec inventory.ContainerRecord) {
	fmt.Fprintf(b, "### Container: %s (%s)\n", rec.Name, rec.ShortID)
	fmt.Fprintf(b, "- **Image**: %s\n", rec.Image)
	fmt.Fprintf(b, "- **Created**: %s\n", rec.CreatedAt)
	fmt.Fprintf(b, "- **Status**: %s\n", rec.Status)
	fmt.Fprintf(b, "- **Ports**: %s\n", formatPorts(rec.Ports))
	fmt.Fprintf(b, "- **Networks**: %s\n\n", formatList(rec.Networks))

	b.WriteString("#### Volumes\n")
	if len(rec.Mounts) == 0 {
		b.WriteString(noMountsPlaceholder + "\n\n")
	} else {
		b.WriteString("```\n")
		for _, m := range rec.Mounts {
			fmt.Fprintf(b, "%s -> %s (%s%s)\n", m.Source, m.Destination, m.Type, roSuffix(m))
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("#### Environment Variables\n")
	if len(rec.EnvVars) == 0 {
		b.WriteString(noEnvPlaceholder + "\n\n")
	} else {
		b.WriteString("```\n")
		for _, env := range rec.EnvVars {
			b.WriteString(env + "\n")
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("#### Resource Limits\n")
	fmt.Fprintf(b, "- CPU Shares: %d\n", rec.CPUShares)
	fmt.Fprintf(b, "- Memory Limit: %s\n\n", formatMemory(rec.MemoryLimit))
}

// formatPorts renders bindings back into the compact arrow form, with the
// derived link appended when a host binding exists.
func formatPorts(ports []inventory.PortBinding) string {
	if len(ports) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, formatBinding(p))
	}
	return strings.Join(parts, ", ")
}

func formatBinding(p inventory.PortBinding) string {
	container := p.ContainerPort + "/" + p.Protocol
	if p.HostPort == "" {
		return container
	}
	host := p.HostPort
	if p.HostIP != "" {
		host = p.HostIP + ":" + p.HostPort
	}
	s := host + "->" + container
	if p.Link != "" {
		s += " (" + p.Link + ")"
	}
	return s
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func formatMemory(bytes int64) string {
	if bytes <= 0 {
		return noMemoryPlaceholder
	}
	return fmt.Sprintf("%.2f MiB", float64(bytes)/(1024*1024))
}

func roSuffix(m inventory.MountSpec) string {
	if m.ReadOnly {
		return ", ro"
	}
	return ""
}
