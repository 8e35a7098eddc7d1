package compose

import (
	"sort"
	"strings"
	"testing"

	"github.com/firefly-engineering/vivarium/internal/config"
)

func allServices() *config.Services {
	return &config.Services{
		Postgres: &config.PostgresConfig{User: "pguser", Password: "pgpass", Database: "mydb"},
		Redis:    true,
		S3:       &config.S3Config{AccessKey: "access", SecretKey: "secret", Buckets: []string{"mybucket"}},
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func renderAndParse(t *testing.T, services *config.Services, name string) *File {
	t.Helper()
	data, err := Render(services, name)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v\n%s", err, data)
	}
	return f
}

func TestRender_ServiceSelection(t *testing.T) {
	tests := []struct {
		name         string
		services     *config.Services
		wantServices string
		wantVolumes  string
	}{
		{"all", allServices(), "postgres,postgres-mcp,rustfs,valkey", "postgres-data,rustfs-data,valkey-data"},
		{"postgres only", &config.Services{Postgres: allServices().Postgres}, "postgres,postgres-mcp", "postgres-data"},
		{"redis only", &config.Services{Redis: true}, "valkey", "valkey-data"},
		{"s3 only", &config.Services{S3: allServices().S3}, "rustfs", "rustfs-data"},
		{"none", &config.Services{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := renderAndParse(t, tt.services, "test-app")

			if got := strings.Join(keys(f.Services), ","); got != tt.wantServices {
				t.Errorf("services = %q, want %q", got, tt.wantServices)
			}
			if got := strings.Join(keys(f.Volumes), ","); got != tt.wantVolumes {
				t.Errorf("volumes = %q, want %q", got, tt.wantVolumes)
			}
		})
	}
}

func TestRender_ProjectName(t *testing.T) {
	f := renderAndParse(t, allServices(), "shop-local")
	if f.Name != "shop-local" {
		t.Errorf("name = %q, want shop-local", f.Name)
	}
}

func TestRender_PortsAreInterpolated(t *testing.T) {
	f := renderAndParse(t, allServices(), "shop-local")

	tests := []struct {
		service string
		want    []string
	}{
		{ServicePostgres, []string{"${POSTGRES_PORT}:5432"}},
		{ServiceValkey, []string{"${REDIS_PORT}:6379"}},
		{ServiceRustFS, []string{"${S3_PORT}:9010", "${S3_CONSOLE_PORT}:9001"}},
	}
	for _, tt := range tests {
		got := f.Services[tt.service].Ports
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("%s ports = %v, want %v", tt.service, got, tt.want)
		}
	}
}

func TestRender_NoSecretsInFile(t *testing.T) {
	data, err := Render(allServices(), "shop-local")
	if err != nil {
		t.Fatal(err)
	}
	for _, secret := range []string{"pgpass", "secret", "5433", "6380"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("compose file should not contain %q", secret)
		}
	}
}

func TestRender_MCPDependsOnPostgres(t *testing.T) {
	f := renderAndParse(t, allServices(), "shop-local")

	dep, ok := f.Services[ServicePostgresMCP].DependsOn[ServicePostgres]
	if !ok {
		t.Fatal("postgres-mcp should depend on postgres")
	}
	if dep.Condition != "service_healthy" || !dep.Restart {
		t.Errorf("dependency = %+v", dep)
	}
	if f.Services[ServicePostgres].Healthcheck == nil {
		t.Error("postgres should have a healthcheck")
	}
}

func TestBuild_NilServices(t *testing.T) {
	f := Build(nil, "empty")
	if len(f.Services) != 0 || f.Volumes != nil {
		t.Errorf("Build(nil) = %+v", f)
	}
}
