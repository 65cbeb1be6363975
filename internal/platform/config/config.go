package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/SscSPs/erp_ledger_engine/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const companyPolicyPrefix = "APPROVAL_POLICY_"

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	MigrationsPath     string
	RateLimit          string // ulule limiter format, e.g. "100-M"
	CORSAllowedOrigins []string

	// Ledger
	BalanceTolerance      decimal.Decimal
	LiquidAccountPrefixes []string

	// Approval gate
	ApprovalPolicy          domain.ApprovalPolicy
	CompanyApprovalPolicies map[string]domain.ApprovalPolicy // keyed by CompanyPolicyKey
	ApprovalAllowDuplicates bool
}

// PolicyFor returns the policy of the company, falling back to the global policy.
func (c *Config) PolicyFor(companyID string) domain.ApprovalPolicy {
	if p, ok := c.CompanyApprovalPolicies[CompanyPolicyKey(companyID)]; ok {
		return p
	}
	return c.ApprovalPolicy
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("BALANCE_TOLERANCE", "0.01")
	viper.SetDefault("LIQUID_ACCOUNT_PREFIXES", "101,102")
	viper.SetDefault("APPROVAL_POLICY", "")
	viper.SetDefault("APPROVAL_ALLOW_DUPLICATES", true)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.LiquidAccountPrefixes = splitList(viper.GetString("LIQUID_ACCOUNT_PREFIXES"))
	cfg.ApprovalAllowDuplicates = viper.GetBool("APPROVAL_ALLOW_DUPLICATES")

	tolerance, err := decimal.NewFromString(viper.GetString("BALANCE_TOLERANCE"))
	if err != nil || tolerance.IsNegative() {
		return nil, fmt.Errorf("invalid BALANCE_TOLERANCE %q", viper.GetString("BALANCE_TOLERANCE"))
	}
	cfg.BalanceTolerance = tolerance

	cfg.ApprovalPolicy, err = ParseApprovalPolicy(viper.GetString("APPROVAL_POLICY"), domain.DefaultApprovalPolicy())
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_POLICY: %w", err)
	}

	cfg.CompanyApprovalPolicies = make(map[string]domain.ApprovalPolicy)
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, companyPolicyPrefix) {
			continue
		}
		key := CompanyPolicyKey(strings.TrimPrefix(name, companyPolicyPrefix))
		policy, err := ParseApprovalPolicy(value, cfg.ApprovalPolicy)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		cfg.CompanyApprovalPolicies[key] = policy
	}

	return cfg, nil
}

// CompanyPolicyKey maps a company id onto the suffix of its APPROVAL_POLICY_ variable.
// Shells cannot export names with dashes, so company 3f2a-77 reads APPROVAL_POLICY_3F2A_77.
func CompanyPolicyKey(companyID string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(companyID))
}

// ParseApprovalPolicy parses "MODULE=always,PAYMENT=10000" on top of base.
// A rule of "never" removes the module from the policy. An empty string returns base.
func ParseApprovalPolicy(s string, base domain.ApprovalPolicy) (domain.ApprovalPolicy, error) {
	policy := make(domain.ApprovalPolicy, len(base))
	for module, rule := range base {
		policy[module] = rule
	}
	for _, item := range splitList(s) {
		module, value, ok := strings.Cut(item, "=")
		module = strings.ToUpper(strings.TrimSpace(module))
		value = strings.TrimSpace(value)
		if !ok || module == "" || value == "" {
			return nil, fmt.Errorf("malformed rule %q", item)
		}
		switch strings.ToLower(value) {
		case "always":
			policy[module] = domain.ApprovalRule{Always: true}
		case "never":
			delete(policy, module)
		default:
			threshold, err := decimal.NewFromString(value)
			if err != nil || threshold.IsNegative() {
				return nil, fmt.Errorf("invalid threshold %q for %s", value, module)
			}
			policy[module] = domain.ApprovalRule{Threshold: threshold}
		}
	}
	return policy, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
