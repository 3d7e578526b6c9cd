package entitlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tool is a product feature that can be unlocked by a plan or bought on its own.
// A zero Price means the tool is only available through plans.
type Tool struct {
	Id    string
	Name  string
	Price decimal.Decimal
}

// PlanOffer is a tier as it is sold.
type PlanOffer struct {
	Tier     Tier
	Name     string
	Price    decimal.Decimal
	Duration time.Duration
}

// Matrix maps each tier to the tools it unlocks. Every tier inherits the tools
// of the tiers below it, so tools(lower) ⊆ tools(higher) holds by construction.
type Matrix struct {
	added  map[Tier][]Tool
	prices map[Tier]decimal.Decimal
	byId   map[string]Tool
}

// Level declares the tools a tier adds on top of the tiers below it.
type Level struct {
	Tier  Tier
	Price decimal.Decimal
	Adds  []Tool
}

// NewMatrix builds a matrix from per-tier additions. A tool may only be
// introduced once; ids are derived from names when missing.
func NewMatrix(levels ...Level) (*Matrix, error) {
	m := &Matrix{
		added:  make(map[Tier][]Tool),
		prices: make(map[Tier]decimal.Decimal),
		byId:   make(map[string]Tool),
	}

	for _, lvl := range levels {
		if _, ok := tierDurations[lvl.Tier]; !ok {
			return nil, fmt.Errorf("entitlement: unknown tier %d", lvl.Tier)
		}
		if _, dup := m.prices[lvl.Tier]; dup {
			return nil, fmt.Errorf("entitlement: tier %s declared twice", lvl.Tier)
		}
		m.prices[lvl.Tier] = lvl.Price

		for _, tool := range lvl.Adds {
			if tool.Id == "" {
				tool.Id = ToolID(tool.Name)
			}
			if _, dup := m.byId[tool.Id]; dup {
				return nil, fmt.Errorf("entitlement: tool %q introduced by more than one tier", tool.Id)
			}
			m.byId[tool.Id] = tool
			m.added[lvl.Tier] = append(m.added[lvl.Tier], tool)
		}
	}

	return m, nil
}

// Tools returns every tool unlocked by t, lower tiers first.
func (m *Matrix) Tools(t Tier) []Tool {
	var tools []Tool
	for _, tier := range Tiers() {
		if tier > t {
			break
		}
		tools = append(tools, m.added[tier]...)
	}
	return tools
}

// ToolIds is Tools reduced to canonical ids.
func (m *Matrix) ToolIds(t Tier) []string {
	tools := m.Tools(t)
	ids := make([]string, len(tools))
	for i, tool := range tools {
		ids[i] = tool.Id
	}
	return ids
}

// Catalog lists every tool known to the matrix.
func (m *Matrix) Catalog() []Tool {
	return m.Tools(TierAnnual)
}

// Lookup resolves a display name or id to a catalog tool.
func (m *Matrix) Lookup(name string) (Tool, bool) {
	tool, ok := m.byId[ToolID(name)]
	return tool, ok
}

// Plans lists the tiers that carry a price, lowest first.
func (m *Matrix) Plans() []PlanOffer {
	var plans []PlanOffer
	for _, t := range Tiers() {
		if offer, ok := m.Plan(t); ok {
			plans = append(plans, offer)
		}
	}
	return plans
}

// Plan returns the offer for t.
func (m *Matrix) Plan(t Tier) (PlanOffer, bool) {
	price, ok := m.prices[t]
	if !ok {
		return PlanOffer{}, false
	}
	d, _ := DurationFor(t)
	return PlanOffer{Tier: t, Name: t.DisplayName(), Price: price, Duration: d}, true
}

func brl(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultMatrix is the catalog the product ships with.
func DefaultMatrix() *Matrix {
	m, err := NewMatrix(
		Level{Tier: TierMonthly, Price: brl("97.00"), Adds: []Tool{
			{Name: "Gerador de Conteúdo", Price: brl("37.00")},
			{Name: "Gerador de Hashtags"},
			{Name: "Gerador de QR Code", Price: brl("47.00")},
		}},
		Level{Tier: TierQuarterly, Price: brl("247.00"), Adds: []Tool{
			{Name: "Editor de Imagens", Price: brl("67.00")},
			{Name: "Agendador de Posts"},
		}},
		Level{Tier: TierSemiannual, Price: brl("447.00"), Adds: []Tool{
			{Name: "AI Funil Builder", Price: brl("147.00")},
			{Name: "Analisador de Concorrentes"},
		}},
		Level{Tier: TierAnnual, Price: brl("797.00"), Adds: []Tool{
			{Name: "Gerador de Vídeos", Price: brl("197.00")},
			{Name: "Consultor IA"},
		}},
	)
	if err != nil {
		panic(err)
	}
	return m
}
