package portfolio

import (
	"fmt"
	"strings"
)

// ProgressBar renders a ten-segment bar, e.g. [▓▓▓▓░░░░░░] for 40%.
func ProgressBar(completion float64) string {
	filled := int(completion / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
}

// SkillStars renders proficiency as filled and empty stars out of ten.
func SkillStars(proficiency int) string {
	if proficiency < 0 {
		proficiency = 0
	}
	if proficiency > 10 {
		proficiency = 10
	}
	return strings.Repeat("⭐", proficiency) + strings.Repeat("☆", 10-proficiency)
}

var statusIcons = map[ProjectStatus]string{
	ProjectPlanned:   "📋",
	ProjectActive:    "🚀",
	ProjectCompleted: "✅",
}

func StatusIcon(status ProjectStatus) string {
	if icon, ok := statusIcons[status]; ok {
		return icon
	}
	return "📋"
}

// FormatProjectCreated renders the confirmation text for a new project.
func FormatProjectCreated(p *Project) string {
	return fmt.Sprintf(`✅ Project '%s' succesvol aangemaakt!
📋 Type: %s
🎯 Prioriteit: %d/10
📝 Beschrijving: %s`, p.Name, p.Type, p.Priority, p.Description)
}

// FormatProjectProgress renders the progress update text, including the delta
// against the previous completion percentage.
func FormatProjectProgress(p *Project, previousCompletion float64, statusChanged bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Project '%s' bijgewerkt!\n", p.Name)
	fmt.Fprintf(&b, "📊 Voortgang: [%s] %.0f%%\n", ProgressBar(p.CompletionPercentage), p.CompletionPercentage)
	fmt.Fprintf(&b, "📈 Vooruitgang: %+.0f%%", p.CompletionPercentage-previousCompletion)
	if statusChanged {
		fmt.Fprintf(&b, "\n🏷️ Status: %s", p.Status)
	}
	return b.String()
}

// FormatSkillTracked renders the skill update text.
func FormatSkillTracked(skill *Skill, improvement int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 Skill '%s' bijgewerkt!\n", skill.Name)
	fmt.Fprintf(&b, "📊 Niveau: %s (%d/10)\n", SkillStars(skill.Proficiency), skill.Proficiency)
	fmt.Fprintf(&b, "📂 Categorie: %s", skill.Category)
	if improvement > 0 {
		fmt.Fprintf(&b, "\n📈 Verbetering: +%d niveau!", improvement)
	}
	if skill.MendixRelevant {
		b.WriteString("\n🎯 Mendix relevant: Ja")
	}
	return b.String()
}

// FormatDashboard renders the full portfolio overview: projects by priority,
// the top five skills and aggregate statistics.
func FormatDashboard(projects []Project, skills []Skill) string {
	var b strings.Builder
	b.WriteString("🎯 MENDIX PORTFOLIO DASHBOARD\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("📋 PROJECTEN:\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "%s %s\n", StatusIcon(p.Status), p.Name)
		fmt.Fprintf(&b, "   [%s] %.0f%% | Priority: %d/10\n\n",
			ProgressBar(p.CompletionPercentage), p.CompletionPercentage, p.Priority)
	}

	if len(skills) > 0 {
		b.WriteString("🎯 TOP VAARDIGHEDEN:\n")
		top := skills
		if len(top) > 5 {
			top = top[:5]
		}
		for _, skill := range top {
			mendixIndicator := ""
			if skill.MendixRelevant {
				mendixIndicator = " 🎯"
			}
			fmt.Fprintf(&b, "• %s: %s (%d/10)%s\n",
				skill.Name, SkillStars(skill.Proficiency), skill.Proficiency, mendixIndicator)
		}
	}

	var totalPractice float64
	mendixSkills := 0
	for _, skill := range skills {
		totalPractice += skill.PracticeHours
		if skill.MendixRelevant {
			mendixSkills++
		}
	}
	completedProjects := 0
	for _, p := range projects {
		if p.Status == ProjectCompleted {
			completedProjects++
		}
	}

	b.WriteString("\n📊 STATISTIEKEN:\n")
	fmt.Fprintf(&b, "• Projecten voltooid: %d/%d\n", completedProjects, len(projects))
	fmt.Fprintf(&b, "• Totale oefentijd: %.1f uur\n", totalPractice)
	fmt.Fprintf(&b, "• Mendix skills: %d/%d\n", mendixSkills, len(skills))

	return b.String()
}
