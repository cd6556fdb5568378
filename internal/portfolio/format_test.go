package portfolio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/portfolio"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		completion float64
		want       string
	}{
		{name: "zero", completion: 0, want: "░░░░░░░░░░"},
		{name: "forty", completion: 40, want: "▓▓▓▓░░░░░░"},
		{name: "partial segment rounds down", completion: 45, want: "▓▓▓▓░░░░░░"},
		{name: "full", completion: 100, want: "▓▓▓▓▓▓▓▓▓▓"},
		{name: "clamped above", completion: 150, want: "▓▓▓▓▓▓▓▓▓▓"},
		{name: "clamped below", completion: -10, want: "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, portfolio.ProgressBar(tt.completion))
		})
	}
}

func TestSkillStars(t *testing.T) {
	require.Equal(t, "⭐⭐⭐☆☆☆☆☆☆☆", portfolio.SkillStars(3))
	require.Equal(t, "☆☆☆☆☆☆☆☆☆☆", portfolio.SkillStars(0))
	require.Equal(t, "⭐⭐⭐⭐⭐⭐⭐⭐⭐⭐", portfolio.SkillStars(12))
}

func TestFormatProjectCreated(t *testing.T) {
	p := &portfolio.Project{
		Name:        "Webshop Module",
		Type:        "mendix_app",
		Priority:    8,
		Description: "Productcatalogus in Mendix",
	}

	got := portfolio.FormatProjectCreated(p)

	require.Contains(t, got, "✅ Project 'Webshop Module' succesvol aangemaakt!")
	require.Contains(t, got, "🎯 Prioriteit: 8/10")
	require.Contains(t, got, "📝 Beschrijving: Productcatalogus in Mendix")
}

func TestFormatProjectProgress(t *testing.T) {
	p := &portfolio.Project{
		Name:                 "Webshop Module",
		Status:               portfolio.ProjectActive,
		CompletionPercentage: 60,
	}

	got := portfolio.FormatProjectProgress(p, 40, true)

	require.Contains(t, got, "🚀 Project 'Webshop Module' bijgewerkt!")
	require.Contains(t, got, "[▓▓▓▓▓▓░░░░] 60%")
	require.Contains(t, got, "📈 Vooruitgang: +20%")
	require.Contains(t, got, "🏷️ Status: active")
}

func TestFormatProjectProgressWithoutStatusChange(t *testing.T) {
	p := &portfolio.Project{Name: "Webshop Module", CompletionPercentage: 30}

	got := portfolio.FormatProjectProgress(p, 30, false)

	require.Contains(t, got, "📈 Vooruitgang: +0%")
	require.NotContains(t, got, "🏷️ Status")
}

func TestFormatSkillTracked(t *testing.T) {
	skill := &portfolio.Skill{
		Name:           "Microflows",
		Category:       "mendix",
		Proficiency:    7,
		MendixRelevant: true,
	}

	got := portfolio.FormatSkillTracked(skill, 2)

	require.Contains(t, got, "🎯 Skill 'Microflows' bijgewerkt!")
	require.Contains(t, got, "(7/10)")
	require.Contains(t, got, "📂 Categorie: mendix")
	require.Contains(t, got, "📈 Verbetering: +2 niveau!")
	require.Contains(t, got, "🎯 Mendix relevant: Ja")
}

func TestFormatSkillTrackedNoImprovement(t *testing.T) {
	skill := &portfolio.Skill{Name: "SQL", Category: "data", Proficiency: 5}

	got := portfolio.FormatSkillTracked(skill, 0)

	require.NotContains(t, got, "Verbetering")
	require.NotContains(t, got, "Mendix relevant")
}

func TestFormatDashboard(t *testing.T) {
	projects := []portfolio.Project{
		{Name: "Webshop Module", Status: portfolio.ProjectActive, CompletionPercentage: 60, Priority: 8},
		{Name: "Portfolio Site", Status: portfolio.ProjectCompleted, CompletionPercentage: 100, Priority: 5},
	}
	skills := []portfolio.Skill{
		{Name: "Microflows", Proficiency: 8, MendixRelevant: true, PracticeHours: 12.5},
		{Name: "SQL", Proficiency: 6, PracticeHours: 4},
	}

	got := portfolio.FormatDashboard(projects, skills)

	require.Contains(t, got, "🎯 MENDIX PORTFOLIO DASHBOARD")
	require.Contains(t, got, "🚀 Webshop Module")
	require.Contains(t, got, "✅ Portfolio Site")
	require.Contains(t, got, "🎯 TOP VAARDIGHEDEN:")
	require.Contains(t, got, "• Microflows: ")
	require.Contains(t, got, "• Projecten voltooid: 1/2")
	require.Contains(t, got, "• Totale oefentijd: 16.5 uur")
	require.Contains(t, got, "• Mendix skills: 1/2")
}

func TestFormatDashboardEmpty(t *testing.T) {
	got := portfolio.FormatDashboard(nil, nil)

	require.Contains(t, got, "📋 PROJECTEN:")
	require.NotContains(t, got, "TOP VAARDIGHEDEN")
	require.Contains(t, got, "• Projecten voltooid: 0/0")
}
