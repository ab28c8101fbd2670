package agents

import (
	"context"
	"strconv"
	"strings"

	"renoplanner/internal/inference"
	"renoplanner/pkg"
)

const assessPrompt = `You are a visual AI specialist assessing a space for renovation.
The first image(s) show the current room; any remaining images are style inspiration.

Analyze the images and the user's request, then answer ONLY with one field per line
in exactly this form (omit lines you cannot determine):

room_type: <kitchen|bathroom|bedroom|living_room|other>
dimensions: <rough dimensions if visible>
square_feet: <integer estimate>
condition: <current condition and key problems>
current_style: <current aesthetic>
desired_style: <style from inspiration images or the request>
materials: <comma-separated materials visible in the room>
constraints: <comma-separated constraints to respect, e.g. keep layout>
budget: <dollar amount if the request mentions one>

User request: `

// Assessor analyzes current-room and inspiration images into a structured
// assessment. Results are model-derived and not deterministic; the only
// guarantee on success is a well-formed AssessmentResult.
type Assessor struct {
	text inference.TextGenerator
}

func NewAssessor(text inference.TextGenerator) *Assessor {
	return &Assessor{text: text}
}

// Assess requires at least one current-room image.
func (a *Assessor) Assess(ctx context.Context, currentRoom, inspiration []*pkg.ImageAsset, preferences string) (*pkg.AssessmentResult, error) {
	if len(currentRoom) == 0 {
		return nil, &pkg.MissingInputError{Input: string(pkg.RoleCurrentRoom)}
	}

	images := make([]*pkg.ImageAsset, 0, len(currentRoom)+len(inspiration))
	images = append(images, currentRoom...)
	images = append(images, inspiration...)

	out, err := a.text.GenerateText(ctx, assessPrompt+preferences, images)
	if err != nil {
		return nil, err
	}

	result := parseAssessment(out)
	if result.RoomType == "" {
		// The model did not commit to a room type; fall back to cues in
		// the request text before handing an incomplete assessment on.
		result.RoomType = detectRoomType(preferences)
	}
	if result.DesiredStyle == "" {
		result.DesiredStyle = detectStyle(preferences)
	}
	return result, nil
}

func parseAssessment(content string) *pkg.AssessmentResult {
	result := &pkg.AssessmentResult{}

	for _, line := range strings.Split(content, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "room_type":
			result.RoomType = strings.ReplaceAll(strings.ToLower(value), " ", "_")
		case "dimensions":
			result.Dimensions = value
		case "square_feet":
			if n, err := strconv.Atoi(strings.TrimSpace(strings.Map(digitsOnly, value))); err == nil && n > 0 {
				result.SquareFeet = n
			}
		case "condition":
			result.Condition = value
		case "current_style":
			result.CurrentStyle = value
		case "desired_style":
			result.DesiredStyle = value
		case "materials":
			result.Materials = splitList(value)
		case "constraints":
			result.Constraints = splitList(value)
		case "budget":
			cleaned := strings.Map(digitsOnly, value)
			if n, err := strconv.ParseFloat(cleaned, 64); err == nil && n > 0 {
				result.BudgetLimit = n
			}
		}
	}

	return result
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func digitsOnly(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

func detectRoomType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "kitchen"):
		return "kitchen"
	case strings.Contains(lower, "bathroom") || strings.Contains(lower, "bath"):
		return "bathroom"
	case strings.Contains(lower, "bedroom"):
		return "bedroom"
	case strings.Contains(lower, "living"):
		return "living_room"
	default:
		return ""
	}
}

func detectStyle(text string) string {
	lower := strings.ToLower(text)
	for _, style := range []string{"modern farmhouse", "mid-century", "minimalist", "industrial", "scandinavian", "traditional", "modern", "rustic", "coastal"} {
		if strings.Contains(lower, style) {
			return style
		}
	}
	return ""
}
