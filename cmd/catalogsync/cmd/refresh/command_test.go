package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/catalogs/files"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

type item struct{ ID string }

func staticEngine(t *testing.T, instance string, fetchErr error, ids ...string) *reconciler.Engine {
	t.Helper()
	items := make([]item, len(ids))
	for i, id := range ids {
		items[i] = item{ID: id}
	}
	e, err := reconciler.New(provider.NewIdentity("StaticProvider", instance),
		reconciler.WithCollection(&reconciler.Collection[item]{
			Name: "items",
			Source: reconciler.SourceFuncs[item]{
				FetchFunc: func(context.Context) ([]item, error) {
					if fetchErr != nil {
						return nil, fetchErr
					}
					return items, nil
				},
				IdentifyFunc: func(i item) string { return i.ID },
			},
			VendorAnnotation: "example.com/id",
			Transform: func(_ context.Context, i item) (catalog.Entity, error) {
				return catalog.Entity{Kind: "Resource", Metadata: catalog.Metadata{Name: i.ID}}, nil
			},
		}),
	)
	require.NoError(t, err)
	return e
}

func mockApp(format string, engines ...*reconciler.Engine) *appcontext.Mock {
	return &appcontext.Mock{
		Format: format,
		NewClientFunc: func(ctx context.Context, opts ...catalogsync.Option) (catalogsync.Client, error) {
			return catalogsync.New(ctx, nil, append(opts, catalogsync.WithEngines(engines...))...)
		},
	}
}

func execute(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode(t *testing.T, out string) []entity {
	t.Helper()
	var got []entity
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got
}

func refs(list []entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Provider + " " + e.Ref
	}
	return out
}

func TestRefreshAll(t *testing.T) {
	app := mockApp("json",
		staticEngine(t, "west", nil, "b"),
		staticEngine(t, "east", nil, "c", "a"),
	)

	out, err := execute(t, app)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"StaticProvider:east Resource:default/a",
		"StaticProvider:east Resource:default/c",
		"StaticProvider:west Resource:default/b",
	}, refs(decode(t, out)))
}

func TestRefreshNamedProvider(t *testing.T) {
	app := mockApp("json",
		staticEngine(t, "east", nil, "a"),
		staticEngine(t, "west", nil, "b"),
	)

	out, err := execute(t, app, "StaticProvider:west")
	require.NoError(t, err)
	assert.Equal(t, []string{"StaticProvider:west Resource:default/b"}, refs(decode(t, out)))
}

func TestRefreshUnknownProvider(t *testing.T) {
	app := mockApp("json", staticEngine(t, "east", nil, "a"))

	_, err := execute(t, app, "StaticProvider:north")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRefreshPartialFailure(t *testing.T) {
	app := mockApp("json",
		staticEngine(t, "east", nil, "a"),
		staticEngine(t, "west", fmt.Errorf("boom"), "b"),
	)

	out, err := execute(t, app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StaticProvider:west")

	// The healthy provider's entities are still printed
	assert.Equal(t, []string{"StaticProvider:east Resource:default/a"}, refs(decode(t, out)))
}

func TestRefreshDryRun(t *testing.T) {
	app := mockApp("json", staticEngine(t, "east", nil, "a", "b"))

	out, err := execute(t, app, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"StaticProvider:east Resource:default/a",
		"StaticProvider:east Resource:default/b",
	}, refs(decode(t, out)))
}

func TestRefreshWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	app := mockApp("yaml", staticEngine(t, "east", nil, "a"))

	out, err := execute(t, app, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Resource:default/a")

	snapshots, err := files.NewCatalog(dir)
	require.NoError(t, err)
	doc, err := snapshots.Load("StaticProvider:east")
	require.NoError(t, err)
	require.Len(t, doc.Entities, 1)
	assert.Equal(t, "a", doc.Entities[0].Metadata.Name)

	_, err = os.Stat(filepath.Join(dir, "StaticProvider_east.yaml"))
	assert.NoError(t, err)
}

func TestRefreshFlagValidation(t *testing.T) {
	app := mockApp("json", staticEngine(t, "east", nil, "a"))

	_, err := execute(t, app, "--dry-run", "--out", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = execute(t, mockApp("xml"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestEntitiesTable(t *testing.T) {
	list := entities{
		newEntity("StaticProvider:east", catalog.Entity{
			Kind: "Resource",
			Metadata: catalog.Metadata{
				Name:        "a",
				Annotations: map[string]string{"backstage.io/managed-by-location": "url:https://example.com"},
			},
		}),
	}

	data := list.Table()
	assert.Equal(t, []string{"Provider", "Kind", "Namespace", "Name", "Location"}, data.Headers)
	assert.Equal(t, [][]string{{"StaticProvider:east", "Resource", "default", "a", "url:https://example.com"}}, data.Rows)
}
