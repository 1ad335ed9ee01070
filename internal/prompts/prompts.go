// Package prompts assembles the text payloads sent to the language model.
// Templates live in embedded YAML files so wording can change without
// touching assembly logic.
package prompts

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stackmentor/backend/internal/models"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type chatTemplate struct {
	SystemPrompt    string `yaml:"system_prompt"`
	ProfileLine     string `yaml:"profile_line"`
	TechStackHeader string `yaml:"tech_stack_header"`
	NoTechStack     string `yaml:"no_tech_stack"`
	HistoryHeader   string `yaml:"history_header"`
}

type interviewTemplate struct {
	Prompt string `yaml:"prompt"`
}

// Builder renders chat and interview prompts from the embedded templates.
type Builder struct {
	chat      chatTemplate
	interview interviewTemplate
}

func NewBuilder() (*Builder, error) {
	b := &Builder{}

	if err := loadTemplate("templates/chat.yaml", &b.chat); err != nil {
		return nil, err
	}
	if err := loadTemplate("templates/interview.yaml", &b.interview); err != nil {
		return nil, err
	}

	return b, nil
}

func loadTemplate(path string, out interface{}) error {
	data, err := templateFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return nil
}

// ChatPromptInput carries everything the assembler loaded for one turn.
// Technologies must already be ordered by category then name; History must
// be in sequence order and already truncated to the history window.
type ChatPromptInput struct {
	User         *models.User
	Technologies []models.Technology
	History      []models.ChatMessage
	UserMessage  string
}

// ChatPrompt renders the full payload for one chat turn: system
// instruction (topic restriction, profile, enumerated tech stack),
// transcript window, and the new user message.
func (b *Builder) ChatPrompt(in ChatPromptInput) string {
	role := in.User.CurrentRole
	if role == "" {
		role = "software engineer"
	}
	profile := strings.ReplaceAll(b.chat.ProfileLine, "{{.Role}}", role)
	profile = strings.ReplaceAll(profile, "{{.Years}}", strconv.Itoa(in.User.YearsOfExperience))

	system := strings.ReplaceAll(b.chat.SystemPrompt, "{{.Profile}}", profile)
	system = strings.ReplaceAll(system, "{{.TechStack}}", b.formatTechStack(in.Technologies))

	var sb strings.Builder
	sb.WriteString(system)
	sb.WriteString("\n")

	if len(in.History) > 0 {
		sb.WriteString(b.chat.HistoryHeader)
		sb.WriteString("\n")
		for _, msg := range in.History {
			sb.WriteString(speaker(msg.Role))
			sb.WriteString(": ")
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("User: ")
	sb.WriteString(in.UserMessage)
	sb.WriteString("\nAssistant:")

	return sb.String()
}

// formatTechStack enumerates the selection grouped by category. Input
// order (category, name) is preserved so the rendering is deterministic.
func (b *Builder) formatTechStack(techs []models.Technology) string {
	if len(techs) == 0 {
		return b.chat.NoTechStack
	}

	var sb strings.Builder
	sb.WriteString(b.chat.TechStackHeader)
	sb.WriteString("\n")

	current := ""
	for _, tech := range techs {
		if tech.Category != current {
			if current != "" {
				sb.WriteString("\n")
			}
			current = tech.Category
			sb.WriteString("- ")
			sb.WriteString(current)
			sb.WriteString(": ")
			sb.WriteString(tech.Name)
			continue
		}
		sb.WriteString(", ")
		sb.WriteString(tech.Name)
	}

	return sb.String()
}

func speaker(role models.MessageRole) string {
	if role == models.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

// InterviewPromptInput parameterizes a question set request.
type InterviewPromptInput struct {
	NumQuestions    int
	TargetRole      string
	ExperienceLevel string
	Years           int
	TechStack       []string
	FocusAreas      []string
}

// InterviewPrompt renders the structured-question request.
func (b *Builder) InterviewPrompt(in InterviewPromptInput) string {
	techStack := "General software engineering"
	if len(in.TechStack) > 0 {
		techStack = strings.Join(in.TechStack, ", ")
	}
	focusAreas := "General technical and behavioral"
	if len(in.FocusAreas) > 0 {
		focusAreas = strings.Join(in.FocusAreas, ", ")
	}

	p := strings.ReplaceAll(b.interview.Prompt, "{{.NumQuestions}}", strconv.Itoa(in.NumQuestions))
	p = strings.ReplaceAll(p, "{{.TargetRole}}", in.TargetRole)
	p = strings.ReplaceAll(p, "{{.ExperienceLevel}}", in.ExperienceLevel)
	p = strings.ReplaceAll(p, "{{.Years}}", strconv.Itoa(in.Years))
	p = strings.ReplaceAll(p, "{{.TechStack}}", techStack)
	p = strings.ReplaceAll(p, "{{.FocusAreas}}", focusAreas)

	return p
}
