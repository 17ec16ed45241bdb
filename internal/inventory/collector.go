package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"golang.org/x/sync/errgroup"

	"github.com/dockreport/dockreport/internal/docker"
)

// ErrNoContainers distinguishes an empty host from a runtime failure so
// callers can short-circuit before composing an empty report.
var ErrNoContainers = errors.New("no containers found")

// Inventory is the full result of one collection pass: the normalized
// records plus the raw inspect objects they were derived from. Raw[i]
// corresponds to Records[i].
type Inventory struct {
	Records []ContainerRecord
	Raw     []json.RawMessage
}

// RawJSON renders the raw inspect objects as an indented JSON array, the
// exact bytes persisted to the artifact dump and embedded in the AI prompt.
func (inv *Inventory) RawJSON() ([]byte, error) {
	return json.MarshalIndent(inv.Raw, "", "  ")
}

// Collector lists and inspects containers through the runtime CLI and
// normalizes the output into ContainerRecords.
type Collector struct {
	Runtime docker.Runtime
}

// Collect inspects every container on the host. A failure inspecting any
// single container aborts the whole batch: a partial inventory would
// produce a misleadingly incomplete report. No retries.
func (c *Collector) Collect(ctx context.Context, includeStopped bool) (*Inventory, error) {
	ids, err := c.Runtime.ContainerIDs(ctx, includeStopped)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoContainers
	}

	inv := &Inventory{
		Records: make([]ContainerRecord, len(ids)),
		Raw:     make([]json.RawMessage, len(ids)),
	}

	// Inspect concurrently; the first failure cancels the rest. Results
	// keep the listing order.
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			raw, err := c.Runtime.ContainerInspect(gctx, id)
			if err != nil {
				return fmt.Errorf("inspect container %s: %w", id, err)
			}
			rec, err := recordFromInspect(raw)
			if err != nil {
				return fmt.Errorf("inspect container %s: %w", id, err)
			}
			inv.Records[i] = rec
			inv.Raw[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inv, nil
}

// recordFromInspect normalizes one `docker inspect` object, decoded with
// the Docker SDK types, into a ContainerRecord.
func recordFromInspect(raw []byte) (ContainerRecord, error) {
	var resp container.InspectResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ContainerRecord{}, fmt.Errorf("malformed inspect output: %w", err)
	}
	if resp.ContainerJSONBase == nil {
		return ContainerRecord{}, fmt.Errorf("malformed inspect output: missing container fields")
	}

	rec := ContainerRecord{
		ID:        resp.ID,
		ShortID:   shortID(resp.ID),
		Name:      strings.TrimPrefix(resp.Name, "/"),
		CreatedAt: resp.Created,
	}
	if resp.State != nil {
		rec.Status = resp.State.Status
	}
	if resp.Config != nil {
		rec.Image = resp.Config.Image
		rec.EnvVars = resp.Config.Env
		rec.ComposeProject = resp.Config.Labels[composeProjectLabel]
	}
	if resp.HostConfig != nil {
		rec.CPUShares = resp.HostConfig.CPUShares
		rec.MemoryLimit = resp.HostConfig.Memory
	}
	if resp.NetworkSettings != nil {
		rec.Ports = ParsePortSpec(portSpecString(resp.NetworkSettings.Ports))
		for name := range resp.NetworkSettings.Networks {
			rec.Networks = append(rec.Networks, name)
		}
		sort.Strings(rec.Networks)
	}
	for _, m := range resp.Mounts {
		rec.Mounts = append(rec.Mounts, MountSpec{
			Source:      m.Source,
			Destination: m.Destination,
			Type:        string(m.Type),
			ReadOnly:    !m.RW,
		})
	}
	return rec, nil
}

// portSpecString renders a NetworkSettings.Ports map in the compact
// `docker ps` style consumed by ParsePortSpec. Ports are sorted so the
// resulting bindings are stable.
func portSpecString(ports nat.PortMap) string {
	specs := make([]string, 0, len(ports))
	for p := range ports {
		specs = append(specs, string(p))
	}
	sort.Strings(specs)

	var parts []string
	for _, spec := range specs {
		bindings := ports[nat.Port(spec)]
		if len(bindings) == 0 {
			parts = append(parts, spec)
			continue
		}
		for _, b := range bindings {
			parts = append(parts, fmt.Sprintf("%s:%s->%s", b.HostIP, b.HostPort, spec))
		}
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
