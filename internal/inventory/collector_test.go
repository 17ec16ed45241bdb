package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dockreport/dockreport/internal/docker"
)

func webContainer() docker.MockContainer {
	return docker.MockContainer{
		ID:      "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2",
		Name:    "web",
		Image:   "nginx:latest",
		Created: "2026-08-30T10:00:00Z",
		State:   "running",
		Ports: map[string][]docker.MockPortBinding{
			"80/tcp": {{HostIP: "0.0.0.0", HostPort: "8080"}},
		},
		Networks: []string{"bridge", "frontend"},
		Mounts: []docker.MockMount{
			{Source: "/srv/html", Destination: "/usr/share/nginx/html", Type: "bind", RW: false},
		},
		Env:    []string{"NGINX_PORT=80"},
		Labels: map[string]string{"com.docker.compose.project": "webstack"},
		CPU:    512,
		Memory: 536870912,
	}
}

func cacheContainer() docker.MockContainer {
	return docker.MockContainer{
		ID:      "f0e1d2c3b4a5f6e7d8c9b0a1f2e3d4c5b6a7f8e9d0c1b2a3f4e5d6c7b8a9f0e1",
		Name:    "cache",
		Image:   "redis:alpine",
		Created: "2026-08-30T11:00:00Z",
		State:   "running",
		Ports:   map[string][]docker.MockPortBinding{"6379/tcp": nil},
	}
}

func TestCollect(t *testing.T) {
	rt := docker.NewMockRuntime(webContainer(), cacheContainer())
	c := &Collector{Runtime: rt}

	inv, err := c.Collect(context.Background(), false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(inv.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(inv.Records))
	}
	if len(inv.Raw) != 2 {
		t.Fatalf("expected 2 raw objects, got %d", len(inv.Raw))
	}

	web := inv.Records[0]
	if web.Name != "web" {
		t.Errorf("Name = %q", web.Name)
	}
	if web.ShortID != "a1b2c3d4e5f6" {
		t.Errorf("ShortID = %q", web.ShortID)
	}
	if web.Image != "nginx:latest" {
		t.Errorf("Image = %q", web.Image)
	}
	if web.Status != "running" {
		t.Errorf("Status = %q", web.Status)
	}
	if web.ComposeProject != "webstack" {
		t.Errorf("ComposeProject = %q", web.ComposeProject)
	}
	if web.CPUShares != 512 || web.MemoryLimit != 536870912 {
		t.Errorf("resources = %d shares, %d bytes", web.CPUShares, web.MemoryLimit)
	}

	if len(web.Ports) != 1 {
		t.Fatalf("expected 1 port binding, got %d", len(web.Ports))
	}
	p := web.Ports[0]
	if p.HostIP != "0.0.0.0" || p.HostPort != "8080" || p.ContainerPort != "80" || p.Protocol != "tcp" {
		t.Errorf("binding = %+v", p)
	}
	if p.Link != "http://localhost:8080" {
		t.Errorf("Link = %q", p.Link)
	}

	if got := fmt.Sprint(web.Networks); got != "[bridge frontend]" {
		t.Errorf("Networks = %s", got)
	}
	if len(web.Mounts) != 1 {
		t.Fatalf("expected 1 mount, got %d", len(web.Mounts))
	}
	m := web.Mounts[0]
	if m.Source != "/srv/html" || m.Destination != "/usr/share/nginx/html" || m.Type != "bind" || !m.ReadOnly {
		t.Errorf("mount = %+v", m)
	}

	cache := inv.Records[1]
	if cache.ComposeProject != "" {
		t.Errorf("cache ComposeProject = %q", cache.ComposeProject)
	}
	if len(cache.Ports) != 1 || cache.Ports[0].HostPort != "" || cache.Ports[0].Link != "" {
		t.Errorf("cache ports = %+v", cache.Ports)
	}
}

func TestCollectNoContainers(t *testing.T) {
	c := &Collector{Runtime: docker.NewMockRuntime()}

	_, err := c.Collect(context.Background(), false)
	if !errors.Is(err, ErrNoContainers) {
		t.Fatalf("expected ErrNoContainers, got %v", err)
	}
}

func TestCollectSingleInspectFailureAbortsBatch(t *testing.T) {
	rt := docker.NewMockRuntime(webContainer(), cacheContainer())
	rt.InspectErr[cacheContainer().ID] = errors.New("daemon hiccup")
	c := &Collector{Runtime: rt}

	_, err := c.Collect(context.Background(), false)
	if err == nil {
		t.Fatal("expected batch to fail when one inspect fails")
	}
	if !strings.Contains(err.Error(), "daemon hiccup") {
		t.Errorf("error should carry the cause, got %v", err)
	}
}

func TestCollectRuntimeUnavailable(t *testing.T) {
	rt := docker.NewMockRuntime(webContainer())
	rt.Unavailable = true
	c := &Collector{Runtime: rt}

	_, err := c.Collect(context.Background(), false)
	if !errors.Is(err, docker.ErrRuntimeUnavailable) {
		t.Fatalf("expected ErrRuntimeUnavailable, got %v", err)
	}
}

func TestRawJSONIsIndentedArray(t *testing.T) {
	rt := docker.NewMockRuntime(webContainer())
	c := &Collector{Runtime: rt}

	inv, err := c.Collect(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := inv.RawJSON()
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	if !strings.HasPrefix(s, "[") || !strings.Contains(s, "nginx:latest") {
		t.Errorf("unexpected raw dump: %.80s", s)
	}
}
