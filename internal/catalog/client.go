// Package catalog talks to the spreadsheet gateway that holds the machine and
// product master data. The service only ever reads from it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prodplan/internal/model"
	"prodplan/pkg/circuitbreaker"
	"prodplan/pkg/metrics"
)

// Sheet column names as the gateway returns them.
const (
	colMachineReference = "REFERÊNCIAS/MÁQUINA"
	colReference        = "REFERENCIA"
	colProductionTime   = "TEMPO DE PRODUÇÃO"
	colAssemblyTime     = "TEMPO DE MONTAGEM"
	colAssembly2x2      = "MONTAGEM 2X2"
	colAssembly2x2Time  = "TEMPO MONTAGEM 2X2"
	colColor            = "COR"
)

// Client fetches catalog data over HTTP with a Redis read-through cache and a
// circuit breaker around the gateway. The gateway is slow (it proxies a
// spreadsheet), hence the cache TTL of several minutes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rdb        *redis.Client
	breaker    *circuitbreaker.CircuitBreaker
	ttl        time.Duration
	logger     *zap.Logger
}

func NewClient(baseURL string, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rdb:        rdb,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		ttl:        ttl,
		logger:     logger,
	}
}

// Machines returns the machine names known to the catalog, blanks filtered.
func (c *Client) Machines(ctx context.Context) ([]string, error) {
	var raw []string
	if err := c.fetch(ctx, "getMaquinas", nil, &raw); err != nil {
		return nil, err
	}

	machines := make([]string, 0, len(raw))
	for _, m := range raw {
		if strings.TrimSpace(m) != "" {
			machines = append(machines, m)
		}
	}
	return machines, nil
}

// MachineAvailability returns the machine's work hours per day. Lookup
// failures degrade to the default so a single machine entry cannot take down
// a whole scheduling pass.
func (c *Client) MachineAvailability(ctx context.Context, machine string) float64 {
	var hours float64
	err := c.fetch(ctx, "getDisponibilidade", url.Values{"maquina": {machine}}, &hours)
	if err != nil || hours <= 0 {
		c.logger.Warn("machine availability lookup failed, using default",
			zap.String("machine", machine),
			zap.Float64("default_hours", DefaultAvailability),
			zap.Error(err),
		)
		return DefaultAvailability
	}
	return hours
}

// ProductsForMachine returns the cycle-time entries of one machine's data
// sheet.
func (c *Client) ProductsForMachine(ctx context.Context, machine string) ([]model.Product, error) {
	var rows []map[string]any
	err := c.fetch(ctx, "getSheet", url.Values{"sheetName": {sheetName(machine)}}, &rows)
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, parseProduct(row))
	}
	return products, nil
}

func sheetName(machine string) string {
	return "DADOS_" + strings.ToUpper(strings.ReplaceAll(machine, " ", "_"))
}

func parseProduct(row map[string]any) model.Product {
	return model.Product{
		Reference:          asString(row[colReference]),
		MachineReference:   asString(row[colMachineReference]),
		ProductionMinutes:  asFloat(row[colProductionTime]),
		AssemblyMinutes:    asFloat(row[colAssemblyTime]),
		Assembly2x2:        strings.EqualFold(asString(row[colAssembly2x2]), "Sim"),
		Assembly2x2Minutes: asFloat(row[colAssembly2x2Time]),
		Color:              asString(row[colColor]),
	}
}

// The sheet gateway is loose about cell types: numbers may arrive as strings.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// fetch resolves one gateway action through cache, breaker and HTTP, in that
// order.
func (c *Client) fetch(ctx context.Context, action string, params url.Values, dest any) error {
	key := cacheKey(action, params)

	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			if err := json.Unmarshal(cached, dest); err == nil {
				return nil
			}
			// Corrupt cache entry, fall through to the gateway.
			c.rdb.Del(ctx, key)
		}
	}

	var body []byte
	start := time.Now()
	err := c.breaker.Execute(func() error {
		var ferr error
		body, ferr = c.get(ctx, action, params)
		return ferr
	})
	if err != nil {
		metrics.RecordCatalogCallLatency(action, "error", time.Since(start))
		return err
	}
	metrics.RecordCatalogCallLatency(action, "ok", time.Since(start))

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("catalog: decode %s response: %w", action, err)
	}

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache catalog response",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, action string, params url.Values) ([]byte, error) {
	q := url.Values{"action": {action}}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: %s returned status %d", action, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func cacheKey(action string, params url.Values) string {
	if len(params) == 0 {
		return "catalog:" + action
	}
	return "catalog:" + action + ":" + params.Encode()
}
