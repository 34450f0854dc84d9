package container

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cybersonic/lucli/internal/exec"
)

// dockerParser implements containerParser for Docker JSON output.
type dockerParser struct{}

// NewDockerRuntime creates a Runtime using the docker CLI.
func NewDockerRuntime(e exec.Executor) Runtime {
	return &baseRuntime{
		exec:       e,
		binaryName: "docker",
		listArgs:   []string{"ps", "-a"},
		parser:     &dockerParser{},
	}
}

// dockerInspect represents one element of `docker inspect` JSON output.
type dockerInspect struct {
	ID      string `json:"Id"`
	Name    string `json:"Name"`
	Created string `json:"Created"`
	State   struct {
		Status string `json:"Status"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
}

func (d *dockerInspect) toContainer() *Container {
	createdAt, err := time.Parse(time.RFC3339Nano, d.Created)
	if err != nil {
		createdAt, _ = time.Parse(time.RFC3339, d.Created)
	}

	return &Container{
		ID:        d.ID,
		Name:      strings.TrimPrefix(d.Name, "/"),
		Image:     d.Config.Image,
		Status:    parseContainerStatus(d.State.Status),
		CreatedAt: createdAt,
	}
}

// dockerListItem represents one line of `docker ps --format json` NDJSON output.
type dockerListItem struct {
	ID    string `json:"ID"`
	Names string `json:"Names"`
	Image string `json:"Image"`
	State string `json:"State"`
}

func (d *dockerListItem) toContainer() Container {
	return Container{
		ID:     d.ID,
		Name:   d.Names,
		Image:  d.Image,
		Status: parseContainerStatus(d.State),
	}
}

func (p *dockerParser) parseInspect(data []byte) (*Container, error) {
	var infos []dockerInspect
	if err := json.Unmarshal(data, &infos); err != nil {
		return nil, fmt.Errorf("parse container info: %w", err)
	}
	if len(infos) == 0 {
		return nil, ErrNotFound
	}
	return infos[0].toContainer(), nil
}

// parseList parses `docker ps --format json` output, which is
// newline-delimited JSON (one object per line) rather than a JSON array.
func (p *dockerParser) parseList(data []byte) ([]Container, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	containers := make([]Container, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var item dockerListItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("parse container list item: %w", err)
		}
		containers = append(containers, item.toContainer())
	}

	return containers, nil
}
