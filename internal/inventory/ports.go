package inventory

import "strings"

// ParsePortSpec parses a compact `docker ps`-style port mapping string
// ("0.0.0.0:8080->80/tcp, 6379/tcp") into structured bindings. It is total:
// malformed input degrades to best-effort fields rather than erroring, and
// an empty string yields no bindings.
func ParsePortSpec(raw string) []PortBinding {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []PortBinding
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		out = append(out, parsePortSegment(seg))
	}
	return out
}

func parsePortSegment(seg string) PortBinding {
	b := PortBinding{Protocol: "tcp"}

	containerSide := seg
	if host, rest, ok := strings.Cut(seg, "->"); ok {
		containerSide = strings.TrimSpace(rest)
		parseHostSide(&b, strings.TrimSpace(host))
	}

	// Container side: port with optional /protocol suffix.
	if i := strings.LastIndex(containerSide, "/"); i >= 0 {
		b.ContainerPort = containerSide[:i]
		if proto := containerSide[i+1:]; proto != "" {
			b.Protocol = proto
		}
	} else {
		b.ContainerPort = containerSide
	}
	return b
}

// parseHostSide splits "ip:port" at the last colon so IPv6 any-address
// forms like ":::8080" parse as ip "::" port "8080". Anything without a
// usable split is kept whole as a best-effort host port with no link.
func parseHostSide(b *PortBinding, host string) {
	i := strings.LastIndex(host, ":")
	if i <= 0 || i == len(host)-1 {
		b.HostPort = host
		return
	}

	b.HostIP = host[:i]
	b.HostPort = host[i+1:]

	linkHost := strings.Trim(b.HostIP, "[]")
	if linkHost == "0.0.0.0" || linkHost == "::" {
		linkHost = "localhost"
	}
	b.Link = "http://" + linkHost + ":" + b.HostPort
}
