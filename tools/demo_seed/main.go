// Command demo_seed fills a running service with demo centers, companies,
// professors, projects and energy records through the public API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"energy-audit/internal/observability/logging"
)

type config struct {
	baseURL         string
	username        string
	password        string
	orgPrefix       string
	orgCount        int
	projectsPerOrg  int
	defaultPassword string
}

var regions = []string{"Andina", "Caribe", "Pacífica", "Orinoquía", "Amazonía"}

var statuses = []string{"BORRADOR", "EJECUCION", "REVISION", "FINALIZADO"}

func main() {
	cfg := parseConfig()
	logger := logging.Default().WithComponent("demo_seed")
	if cfg.orgCount <= 0 || cfg.projectsPerOrg <= 0 {
		logger.Fatal("org-count and projects-per-org must be > 0")
	}

	ctx := context.Background()
	client, err := login(ctx, cfg.baseURL, cfg.username, cfg.password)
	if err != nil {
		logger.Fatalw("login failed", "error", err)
	}

	for i := 1; i <= cfg.orgCount; i++ {
		code := fmt.Sprintf("%s%02d", strings.ToUpper(cfg.orgPrefix), i)
		orgID, err := client.create(ctx, "/api/v1/organizations", map[string]any{
			"name":   "Centro " + code,
			"code":   code,
			"region": regions[(i-1)%len(regions)],
		})
		if err != nil {
			logger.Fatalw("create organization", "code", code, "error", err)
		}
		companyID, err := client.create(ctx, "/api/v1/companies", map[string]any{
			"razon_social": "Industrias " + code,
			"nit":          fmt.Sprintf("900%06d", i),
			"sector":       "Manufactura",
		})
		if err != nil {
			logger.Fatalw("create company", "code", code, "error", err)
		}
		leadID, err := client.create(ctx, "/api/v1/users", map[string]any{
			"username":        strings.ToLower(code) + "_profesor",
			"email":           strings.ToLower(code) + "@demo.local",
			"first_name":      "Profesor",
			"last_name":       code,
			"role":            "PROFESOR",
			"organization_id": orgID,
			"password":        cfg.defaultPassword,
		})
		if err != nil {
			logger.Fatalw("create professor", "code", code, "error", err)
		}

		for j := 1; j <= cfg.projectsPerOrg; j++ {
			if err := seedProject(ctx, client, orgID, companyID, leadID, code, i, j); err != nil {
				logger.Fatalw("seed project", "code", code, "project", j, "error", err)
			}
		}
		logger.Infow("organization seeded", "code", code, "projects", cfg.projectsPerOrg)
	}
	logger.Infow("demo seed completed", "organizations", cfg.orgCount)
}

func seedProject(ctx context.Context, client *apiClient, orgID, companyID, leadID, code string, org, index int) error {
	start := time.Date(2024, time.Month(index%12+1), 1, 0, 0, 0, 0, time.UTC)
	projectID, err := client.create(ctx, "/api/v1/projects", map[string]any{
		"organization_id": orgID,
		"company_id":      companyID,
		"lead_id":         leadID,
		"name":            fmt.Sprintf("Auditoría %s-%02d", code, index),
		"start_date":      start.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}
	base := "/api/v1/projects/" + projectID
	scale := float64(org*10 + index)

	electricKWh := 10000 * scale
	if err := client.send(ctx, http.MethodPut, base+"/energy/electricidad", map[string]any{
		"consumo_mensual":        electricKWh / 12,
		"consumo_anual":          electricKWh,
		"costo_unitario":         650,
		"costo_mensual_promedio": electricKWh * 650 / 12,
		"costo_total_anual":      electricKWh * 650,
		"factor_emision":         0.126,
		"emisiones_totales":      electricKWh * 0.126 / 1000,
	}, nil); err != nil {
		return err
	}

	gasM3 := 800 * scale
	if err := client.send(ctx, http.MethodPut, base+"/energy/gas_natural", map[string]any{
		"consumo_mensual_orig":   gasM3 / 12,
		"consumo_anual_orig":     gasM3,
		"poder_calorifico":       35000,
		"unidad_pc":              "kJ/m³",
		"costo_unitario":         1800,
		"costo_mensual_promedio": gasM3 * 1800 / 12,
		"costo_total_anual":      gasM3 * 1800,
		"factor_emision":         1.98,
		"emisiones_totales":      gasM3 * 1.98 / 1000,
	}, nil); err != nil {
		return err
	}

	if err := client.send(ctx, http.MethodPut, base+"/production", map[string]any{
		"production_total": 100 * scale,
		"production_unit":  "Ton",
	}, nil); err != nil {
		return err
	}
	return client.send(ctx, http.MethodPut, base+"/status", map[string]any{
		"status": statuses[index%len(statuses)],
	}, nil)
}

type apiClient struct {
	http    *http.Client
	baseURL string
	token   string
}

func login(ctx context.Context, baseURL, username, password string) (*apiClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url required")
	}
	client := &apiClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := client.send(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{"login": username, "password": password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("empty token")
	}
	client.token = resp.Token
	return client, nil
}

func (c *apiClient) create(ctx context.Context, path string, body any) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.send(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%s: empty id", path)
	}
	return resp.ID, nil
}

func (c *apiClient) send(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.baseURL, "base-url", envOrDefault("BASE_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.username, "username", envOrDefault("BOOTSTRAP_ADMIN_USERNAME", "admin"), "superuser login")
	flag.StringVar(&cfg.password, "password", envOrDefault("BOOTSTRAP_ADMIN_PASSWORD", ""), "superuser password")
	flag.StringVar(&cfg.orgPrefix, "org-prefix", envOrDefault("ORG_PREFIX", "DEMO"), "organization code prefix")
	flag.IntVar(&cfg.orgCount, "org-count", envOrInt("ORG_COUNT", 3), "number of centers to seed")
	flag.IntVar(&cfg.projectsPerOrg, "projects-per-org", envOrInt("PROJECTS_PER_ORG", 4), "projects per center")
	flag.StringVar(&cfg.defaultPassword, "user-password", envOrDefault("DEMO_USER_PASSWORD", "demo12345"), "password for seeded users")
	flag.Parse()
	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
