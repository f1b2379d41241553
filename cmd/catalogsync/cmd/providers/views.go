package providers

import (
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/internal/sources/registry"
	"github.com/agentstation/catalogsync/pkg/provider"
)

// Credential modes shown for an instance.
const (
	credentialsStatic  = "static"
	credentialsDefault = "default"
)

// instance is the output view of one resolved provider configuration.
type instance struct {
	Name        string `json:"name" yaml:"name"`
	Kind        string `json:"kind" yaml:"kind"`
	Instance    string `json:"instance" yaml:"instance"`
	Endpoint    string `json:"endpoint" yaml:"endpoint"`
	Credentials string `json:"credentials" yaml:"credentials"`
}

func newInstance(cfg provider.Config) instance {
	creds := credentialsDefault
	if cfg.Credentials != nil {
		creds = credentialsStatic
	}
	return instance{
		Name:        cfg.Identity().Name(),
		Kind:        cfg.Kind,
		Instance:    cfg.ID,
		Endpoint:    cfg.Endpoint,
		Credentials: creds,
	}
}

type instances []instance

// Table implements output.Tabular.
func (l instances) Table() output.Data {
	rows := make([][]string, 0, len(l))
	for _, i := range l {
		rows = append(rows, []string{i.Name, i.Kind, i.Instance, i.Endpoint, i.Credentials})
	}
	return output.Data{
		Headers: []string{"Name", "Kind", "Instance", "Endpoint", "Credentials"},
		Rows:    rows,
	}
}

// kind is the output view of one supported provider kind.
type kind struct {
	Kind          string   `json:"kind" yaml:"kind"`
	ConfigPath    string   `json:"configPath" yaml:"configPath"`
	EndpointField string   `json:"endpointField" yaml:"endpointField"`
	Required      []string `json:"required,omitempty" yaml:"required,omitempty"`
}

type kinds []kind

func supportedKinds() kinds {
	var list kinds
	for _, name := range registry.List() {
		factory, err := registry.Get(name)
		if err != nil {
			continue
		}
		list = append(list, kind{
			Kind:          factory.Schema.Kind,
			ConfigPath:    factory.Schema.Root(),
			EndpointField: factory.Schema.EndpointField,
			Required:      factory.Schema.Required,
		})
	}
	return list
}

// Table implements output.Tabular.
func (l kinds) Table() output.Data {
	rows := make([][]string, 0, len(l))
	for _, k := range l {
		rows = append(rows, []string{k.Kind, k.ConfigPath, k.EndpointField})
	}
	return output.Data{
		Headers: []string{"Kind", "Config Path", "Endpoint Field"},
		Rows:    rows,
	}
}
