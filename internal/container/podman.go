package container

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cybersonic/lucli/internal/exec"
)

// podmanParser implements containerParser for Podman JSON output, which
// differs from docker's just enough (array-of-objects for list, distinct
// field casing) to need its own decoding.
type podmanParser struct{}

// NewPodmanRuntime creates a Runtime using the podman CLI. Podman runs
// containers with systemd as PID 1 by default, which the embedded vendor
// distribution tolerates better under some container engine config profiles.
func NewPodmanRuntime(e exec.Executor) Runtime {
	return &baseRuntime{
		exec:       e,
		binaryName: "podman",
		runArgs:    []string{"--systemd=always"},
		listArgs:   []string{"ps", "-a"},
		parser:     &podmanParser{},
	}
}

type podmanInspect struct {
	ID      string `json:"Id"`
	Name    string `json:"Name"`
	Created string `json:"Created"`
	State   struct {
		Status string `json:"Status"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
	ImageName string `json:"ImageName"`
}

func (p *podmanInspect) toContainer() *Container {
	createdAt, err := time.Parse(time.RFC3339Nano, p.Created)
	if err != nil {
		createdAt, _ = time.Parse(time.RFC3339, p.Created)
	}

	image := p.ImageName
	if image == "" {
		image = p.Config.Image
	}

	return &Container{
		ID:        p.ID,
		Name:      strings.TrimPrefix(p.Name, "/"),
		Image:     image,
		Status:    parseContainerStatus(p.State.Status),
		CreatedAt: createdAt,
	}
}

type podmanListItem struct {
	ID      string   `json:"Id"`
	Names   []string `json:"Names"`
	Image   string   `json:"Image"`
	State   string   `json:"State"`
	Created int64    `json:"Created"`
}

func (p *podmanListItem) toContainer() Container {
	var name string
	if len(p.Names) > 0 {
		name = p.Names[0]
	}
	return Container{
		ID:        p.ID,
		Name:      name,
		Image:     p.Image,
		Status:    parseContainerStatus(p.State),
		CreatedAt: time.Unix(p.Created, 0),
	}
}

func (p *podmanParser) parseInspect(data []byte) (*Container, error) {
	var infos []podmanInspect
	if err := json.Unmarshal(data, &infos); err != nil {
		return nil, fmt.Errorf("parse container info: %w", err)
	}
	if len(infos) == 0 {
		return nil, ErrNotFound
	}
	return infos[0].toContainer(), nil
}

func (p *podmanParser) parseList(data []byte) ([]Container, error) {
	var items []podmanListItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse container list: %w", err)
	}
	containers := make([]Container, len(items))
	for i, item := range items {
		containers[i] = item.toContainer()
	}
	return containers, nil
}
