package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	"github.com/kailas-cloud/searchsync/internal/version"
)

const testConfig = `
http:
  port: 8080
store:
  driver: sqlite
  dsn: ":memory:"
index:
  driver: bleve
sync:
  remove_retry_delay_ms: 1
models:
  - name: Tweet
    fields:
      - name: user
        type: string
        indexed: true
      - name: message
        type: string
        indexed: true
        boost: 2
      - name: secret
        type: string
  - name: Person
    index: tweets
    hydrate: true
    fields:
      - name: name
        type: string
      - name: age
        type: number
        number: integer
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "mapping", "version"})
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "searchsync "+version.Version)
	assert.Contains(t, out, runtime.Version())

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.Equal(t, version.Commit, info.Commit)
}

func TestMappingCmd_AllModels(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "mapping", "--config", path)
	require.NoError(t, err)

	var got map[string]struct {
		Index   string `json:"index"`
		Type    string `json:"type"`
		Mapping struct {
			Properties map[string]struct {
				Type  string   `json:"type"`
				Boost *float64 `json:"boost"`
			} `json:"properties"`
		} `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)

	tweet := got["Tweet"]
	assert.Equal(t, "tweets", tweet.Index)
	assert.Equal(t, "tweet", tweet.Type)
	assert.Len(t, tweet.Mapping.Properties, 2, "only indexed fields are mapped")
	require.NotNil(t, tweet.Mapping.Properties["message"].Boost)
	assert.InDelta(t, 2.0, *tweet.Mapping.Properties["message"].Boost, 0)
	assert.NotContains(t, tweet.Mapping.Properties, "secret")

	person := got["Person"]
	assert.Equal(t, "tweets", person.Index)
	assert.Equal(t, "integer", person.Mapping.Properties["age"].Type)
}

func TestMappingCmd_SelectedModel(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "mapping", "--config", path, "Person")
	require.NoError(t, err)
	assert.Contains(t, out, `"Person"`)
	assert.NotContains(t, out, `"Tweet"`)
}

func TestMappingCmd_Errors(t *testing.T) {
	path := writeConfig(t, testConfig)

	_, err := run(t, "mapping", "--config", path, "Talk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	bad := writeConfig(t, strings.Replace(testConfig, "number: integer", "number: integer\n        boost: -1", 1))
	_, err = run(t, "mapping", "--config", bad)
	require.Error(t, err, "invalid schema must fail registration")

	_, err = run(t, "mapping", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestServe_LifecycleOverHTTP(t *testing.T) {
	cfg, err := config.LoadFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, &cfg, zap.NewNop()) }()

	client := &http.Client{Timeout: 5 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	req, err := http.NewRequest(http.MethodPut, base+"/models/Tweet/documents/1?wait=true",
		strings.NewReader(`{"user":"jamescarr","message":"I like Riak better","secret":"x"}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = client.Post(base+"/models/Tweet/search", "application/json", strings.NewReader(`{"query":"riak"}`))
	require.NoError(t, err)
	var found struct {
		Total int `json:"total"`
		Hits  []struct {
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	_ = resp.Body.Close()
	require.Equal(t, 1, found.Total)
	assert.NotContains(t, found.Hits[0].Source, "secret")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestBuildApp_UnknownDriver(t *testing.T) {
	cfg := config.Config{
		Store: config.StoreConfig{Driver: "mongo"},
		Index: config.IndexConfig{Driver: config.IndexBleve},
	}
	_, err := buildApp(context.Background(), &cfg, zap.NewNop())
	require.Error(t, err)
}
