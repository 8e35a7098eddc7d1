package env

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/joho/godotenv"

	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
)

// Convention package names.
const (
	BackendPackage  = "backend"
	FrontendPackage = "frontend"
)

// DefaultS3Region is the region advertised to backends.
const DefaultS3Region = "us-east-1"

// ComposeVars returns the variables compose.yaml interpolates.
func ComposeVars(project *config.Project, ports port.Map, composeName string) map[string]string {
	vars := map[string]string{
		"COMPOSE_PROJECT_NAME": composeName,
	}
	if project == nil || project.Services == nil {
		return vars
	}
	services := project.Services

	if pg := services.Postgres; pg != nil {
		vars["POSTGRES_PORT"] = strconv.Itoa(ports.Postgres)
		vars["POSTGRES_USER"] = pg.User
		vars["POSTGRES_PASSWORD"] = pg.Password
		vars["POSTGRES_DB"] = pg.Database
	}
	if services.Redis {
		vars["REDIS_PORT"] = strconv.Itoa(ports.Redis)
	}
	if s3 := services.S3; s3 != nil {
		vars["S3_PORT"] = strconv.Itoa(ports.S3)
		vars["S3_CONSOLE_PORT"] = strconv.Itoa(ports.S3Console)
		vars["S3_ACCESS_KEY"] = s3.AccessKey
		vars["S3_SECRET_KEY"] = s3.SecretKey
	}
	return vars
}

// RenderCompose returns the compose .env file content.
func RenderCompose(project *config.Project, ports port.Map, composeName string) ([]byte, error) {
	return render(ComposeVars(project, ports, composeName))
}

// PackageVars returns the variables for one package: convention variables
// for backend and frontend, overridden by the package's own env entries.
func PackageVars(name string, pkg config.Package, project *config.Project, ports port.Map) map[string]string {
	vars := make(map[string]string)
	services := project.Services
	if services == nil {
		services = &config.Services{}
	}

	switch name {
	case BackendPackage:
		backendVars(vars, services, ports, project.HasPackage(FrontendPackage))
	case FrontendPackage:
		frontendVars(vars, services, ports, project.HasPackage(BackendPackage))
	}

	for k, v := range pkg.Env {
		vars[k] = v
	}
	return vars
}

func backendVars(vars map[string]string, services *config.Services, ports port.Map, hasFrontend bool) {
	vars["API_LISTEN_PORT"] = strconv.Itoa(ports.Backend)
	vars["API_URL"] = localURL("http", ports.Backend)

	if hasFrontend {
		vars["FRONTEND_URL"] = localURL("http", ports.Frontend)
	}

	if pg := services.Postgres; pg != nil {
		vars["DATABASE_URL"] = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s", pg.User, pg.Password, ports.Postgres, pg.Database)
	}

	if services.Redis {
		vars["REDIS_ENABLED"] = "true"
		vars["REDIS_URL"] = fmt.Sprintf("redis://localhost:%d/0", ports.Redis)
		vars["REDIS_QUEUE_URL"] = fmt.Sprintf("redis://localhost:%d/1", ports.Redis)
	}

	if s3 := services.S3; s3 != nil {
		vars["AWS_S3_REGION"] = DefaultS3Region
		vars["AWS_S3_ACCESS_KEY_ID"] = s3.AccessKey
		vars["AWS_S3_SECRET_ACCESS_KEY"] = s3.SecretKey
		vars["AWS_S3_ENDPOINT"] = localURL("http", ports.S3)
		if len(s3.Buckets) > 0 {
			vars["AWS_S3_BUCKET_NAME"] = s3.Buckets[0]
		}
		if len(s3.Buckets) > 1 {
			vars["AWS_S3_TEMP_BUCKET_NAME"] = s3.Buckets[1]
		}
	}
}

func frontendVars(vars map[string]string, services *config.Services, ports port.Map, hasBackend bool) {
	vars["PORT"] = strconv.Itoa(ports.Frontend)
	vars["NEXT_PUBLIC_FRONTEND_URL"] = localURL("http", ports.Frontend)

	if hasBackend {
		vars["NEXT_PUBLIC_API_URL"] = localURL("http", ports.Backend)
	}
	if services.S3 != nil {
		vars["NEXT_PUBLIC_ASSET_SRC"] = localURL("https", ports.S3)
	}
}

func localURL(scheme string, p int) string {
	return fmt.Sprintf("%s://localhost:%d", scheme, p)
}

// WritePackageEnvFiles writes an env file for every package that names one.
// It returns the envFile paths written, relative to projectRoot.
func WritePackageEnvFiles(projectRoot string, project *config.Project, ports port.Map) ([]string, error) {
	var written []string
	for _, name := range project.PackageNames() {
		pkg := project.Packages[name]
		if pkg.EnvFile == "" {
			continue
		}

		path, err := securejoin.SecureJoin(projectRoot, pkg.EnvFile)
		if err != nil {
			return written, fmt.Errorf("invalid envFile for package %s: %w", name, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", pkg.EnvFile, err)
		}
		if err := godotenv.Write(PackageVars(name, pkg, project, ports), path); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", pkg.EnvFile, err)
		}

		logging.UserStep("Wrote %s", pkg.EnvFile)
		written = append(written, pkg.EnvFile)
	}
	return written, nil
}

// RemovePackageEnvFiles deletes the env files WritePackageEnvFiles created.
// Missing files are skipped.
func RemovePackageEnvFiles(projectRoot string, project *config.Project) ([]string, error) {
	var removed []string
	for _, name := range project.PackageNames() {
		pkg := project.Packages[name]
		if pkg.EnvFile == "" {
			continue
		}

		path, err := securejoin.SecureJoin(projectRoot, pkg.EnvFile)
		if err != nil {
			return removed, fmt.Errorf("invalid envFile for package %s: %w", name, err)
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("failed to remove %s: %w", pkg.EnvFile, err)
		}

		logging.UserStep("Removed %s", pkg.EnvFile)
		removed = append(removed, pkg.EnvFile)
	}
	return removed, nil
}

// Read parses a dotenv file.
func Read(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return vars, nil
}

func render(vars map[string]string) ([]byte, error) {
	content, err := godotenv.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to render env file: %w", err)
	}
	return []byte(content + "\n"), nil
}
