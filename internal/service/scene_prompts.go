package service

import (
	"characterstory/internal/entity"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const sceneDurationSeconds = 8

// buildContinuationInstruction asks the model for a scene that continues the
// previous prompt with identical characters and an 8 second timeline advance.
func buildContinuationInstruction(previousPrompt, aspectRatio, videoStyle string) string {
	if videoStyle == "" {
		videoStyle = "Realistic"
	}
	return fmt.Sprintf(`You are a professional VEO3 scene creator. Create a CONTINUATION scene that flows naturally from the previous scene.

PREVIOUS SCENE TO CONTINUE FROM:
%s

CONTINUATION REQUIREMENTS:
⚠️ CRITICAL - CHARACTER IDENTITY MUST REMAIN 100%% IDENTICAL:
- Extract ALL character details from the previous scene exactly
- Keep every detail: hair, face, eyes, clothing, personality, etc.
- Characters must be IDENTICAL in the new scene

⚠️ CRITICAL - MAINTAIN CONSISTENCY:
- Use same location or logical next location
- Keep same lighting/time progression (or natural progression)
- Maintain same visual style and genre
- Keep same aspect ratio: %s
- Keep same video style: %s

🎬 CREATE NATURAL CONTINUATION:
- Progress the story naturally by 8 seconds (continuing the timeline)
- Change camera angles for fresh perspective
- Add new actions/dialogue while maintaining character consistency
- Create logical story flow from previous scene
- Keep the same technical specifications
- Duration MUST be exactly 8 seconds

⏱️ TIMELINE CONTINUATION:
- If previous scene was 0-8s, this scene should be 8-16s
- If previous scene was 8-16s, this scene should be 16-24s
- Continue the natural progression of time and action
- Each continuation adds exactly 8 seconds to the story

FORMAT: Use the EXACT VEO3 format as before, ensuring:
1. Character Roster section contains IDENTICAL character descriptions
2. New Performance Timeline with different actions/dialogue (continuing from where previous scene ended)
3. New Camera Choreography with different shots
4. Same technical specifications and visual style
5. Duration: 8 seconds (not longer)

🎭 PERFORMANCE TIMELINE FORMAT:
Create exactly 4 timeline segments of 2 seconds each:
[X.0-X+2.0s] Character action and dialogue
[X+2.0-X+4.0s] Character action and dialogue
[X+4.0-X+6.0s] Character action and dialogue
[X+6.0-X+8.0s] Character action and dialogue

Where X is the continuation start time (8s, 16s, 24s, etc.)

Base this continuation on the previous scene context and create a natural 8-second story progression.`,
		previousPrompt, aspectRatio, videoStyle)
}

// characterRosterSection renders referenced characters for a new-scene
// instruction.
func characterRosterSection(characters []entity.DbCharacter) string {
	if len(characters) == 0 {
		return ""
	}
	var entries []string
	for i, char := range characters {
		entries = append(entries, fmt.Sprintf("Character %d: %s\n%s", i+1, char.Name, char.Prompt))
	}
	return fmt.Sprintf(`

EXISTING CHARACTERS TO INCLUDE (use these EXACT details):
%s

IMPORTANT: Use these characters EXACTLY as described in their prompts. Extract and adapt their details for the VEO3 scene format.`,
		strings.Join(entries, "\n\n"))
}

// buildSceneInstruction asks the model for a complete new VEO3 scene prompt.
func buildSceneInstruction(req entity.SceneGenerateRequest, characters []entity.DbCharacter) string {
	title := req.Title
	if title == "" {
		title = "Auto-generated based on scene"
	}
	videoStyle := req.VideoStyle
	if videoStyle == "" {
		videoStyle = "Realistic"
	}
	genre := req.VideoStyle
	if genre == "" {
		genre = "Realistic/Slice of Life"
	}

	return fmt.Sprintf(`You are a professional VEO3 scene creator. Create a detailed 8-second cinematic scene prompt ready for VEO3.

USER REQUEST:
- Title: %s
- Scene Description: "%s"
- Video Style: %s
- Aspect Ratio: %s%s

INSTRUCTIONS:
1. Create a complete VEO3 prompt that's ready to use immediately
2. If existing characters are provided, incorporate them naturally into the scene
3. Generate additional characters if needed for a compelling scene
4. Use authentic Thai dialogue for Thai scenes, English for international scenes
5. Make the scene cinematic, detailed, and engaging
6. Follow the exact VEO3 format shown below

Create a VEO3 prompt in this EXACT format:

🎬 VEO3 MULTI-CHARACTER SCENE [GENRE: %s]

📍 SETTING & ENVIRONMENT
- Location: [Specific detailed location based on scene]
- Time/Lighting: [Time of day with detailed lighting description]
- Atmosphere: [Emotional atmosphere and mood]
- Background Elements: [List of relevant background elements]
- Props: [Scene-appropriate props and objects]

📹 TECHNICAL SPECIFICATIONS
- Aspect Ratio: %s
- Frame Rate: 24fps (cinematic feel)
- Resolution: 4K Ultra HD
- Duration: 8 seconds

🎨 VISUAL STYLE & COLOR GRADING
- Color Palette: [Detailed color scheme and palette]
- Mood Lighting: [Lighting mood and emotional impact]
- Visual Style: %s
- Color Grading: [Professional color grading approach]
- Special Look: [Unique visual characteristics and effects]

👥 CHARACTER ROSTER
[For each character, include detailed descriptions of hair, face, eyes, lips, skin, ethnicity, gender, build, age, clothing, distinguishing features, personality shown, position in frame, and initial action]

🎭 PERFORMANCE TIMELINE (0-8s)
[Create exactly 4 timeline segments, each 2 seconds, using this EXACT format:
[0.0-2.0s] [Character Name] says in Thai: "[Specific natural dialogue]" + [detailed physical action] (2 seconds)
[2.0-4.0s] [Character Name] says in Thai: "[Specific natural dialogue]" + [detailed physical action] (2 seconds)
[4.0-6.0s] [Character Name] says in Thai: "[Specific natural dialogue]" + [detailed physical action] (2 seconds)
[6.0-8.0s] [Character Name] says in Thai: "[Specific natural dialogue]" + [detailed physical action] (2 seconds)

IMPORTANT: Each dialogue must be authentic Thai conversation that families actually use. Include natural expressions, emotions, and context-appropriate responses.]

🎥 CAMERA CHOREOGRAPHY
[Describe exactly 3-4 camera shots with precise timing, camera movements (pan, tilt, zoom, dolly), framing, and what the camera focuses on and why]

🔊 AUDIO LAYERS
- Dialogue: [Specify clear dialogue quality, character voice distinctions, and emotional tones]
- Ambient: [Detailed environmental sounds specific to the scene location]
- Effects: [Specific foley sounds for character actions and object interactions]
- Music: [Detailed background music style, instruments, and emotional tone]

✨ VISUAL EFFECTS
[List visual effects, lighting techniques, and cinematic elements]

🚨 IMPORTANT RULES:
NO subtitles, NO text overlays, NO on-screen text, NO dialogue captions.

Base this scene on: "%s"`,
		title, req.Description, videoStyle, req.AspectRatio, characterRosterSection(characters),
		genre, req.AspectRatio, videoStyle, req.Description)
}

// extractLocation maps Thai and English location keywords in the description
// to a concrete setting line for the fallback template.
func extractLocation(description string) string {
	lower := strings.ToLower(description)

	switch {
	case strings.Contains(lower, "ตลาด") || strings.Contains(lower, "market"):
		return "Bustling local market with vibrant stalls and authentic atmosphere"
	case strings.Contains(lower, "บ้าน") || strings.Contains(lower, "home"):
		return "Traditional Thai home interior with warm, authentic furnishings"
	case strings.Contains(lower, "ห้อง") || strings.Contains(lower, "room"):
		return "Cozy interior room with comfortable atmosphere"
	case strings.Contains(lower, "สวน") || strings.Contains(lower, "garden"):
		return "Beautiful garden with lush greenery and natural lighting"
	case strings.Contains(lower, "ร้าน") || strings.Contains(lower, "shop"):
		return "Charming local shop with authentic character"
	case strings.Contains(lower, "วัด") || strings.Contains(lower, "temple"):
		return "Peaceful temple grounds with traditional architecture"
	}

	return "Cinematic location with authentic atmosphere based on scene context"
}

// sceneFallbackPrompt is the deterministic new-scene template used when the
// model is unavailable.
func sceneFallbackPrompt(req entity.SceneGenerateRequest, characters []entity.DbCharacter) string {
	genre := req.VideoStyle
	if genre == "" {
		genre = "Realistic/Slice of Life"
	}
	visualStyle := req.VideoStyle
	if visualStyle == "" {
		visualStyle = "Realistic cinematography with artistic touch"
	}

	characterSection := `Character 1: Generated Character
- Description: Character suitable for the scene
- Age: Adult
- Gender: Appropriate for scene
- Role: Scene participant
- Action: Engages naturally in scene activities`
	if len(characters) > 0 {
		var entries []string
		for i, char := range characters {
			prompt := truncateRunes(char.Prompt, 200)
			entries = append(entries, fmt.Sprintf("Character %d: %s\n- Details from character prompt: %s...", i+1, char.Name, prompt))
		}
		characterSection = strings.Join(entries, "\n\n")
	}

	return fmt.Sprintf(`🎬 VEO3 MULTI-CHARACTER SCENE [GENRE: %s]

📍 SETTING & ENVIRONMENT
- Location: %s
- Time/Lighting: Natural cinematic lighting with professional setup
- Atmosphere: %s
- Background Elements: Contextual elements that enhance the scene narrative
- Props: Scene-appropriate props that support the storytelling

📹 TECHNICAL SPECIFICATIONS
- Aspect Ratio: %s
- Frame Rate: 24fps (cinematic feel)
- Resolution: 4K Ultra HD
- Duration: 8 seconds

🎨 VISUAL STYLE & COLOR GRADING
- Color Palette: Cinematic colors with natural and warm tones
- Mood Lighting: Professional lighting that enhances the atmosphere
- Visual Style: %s
- Color Grading: Professional color correction for cinematic appeal
- Special Look: Film-quality grain and depth for authenticity

👥 CHARACTER ROSTER
%s

🎭 PERFORMANCE TIMELINE (0-8s)
[0.0-2.0s] Scene establishment with atmospheric setup and character introduction
[2.0-5.0s] Main scene action unfolds: %s
[5.0-8.0s] Natural scene conclusion with authentic character interactions

🎥 CAMERA CHOREOGRAPHY
Shot 1 (0-3s): Wide establishing shot capturing the full scene atmosphere and character positions
Shot 2 (3-6s): Medium shots focusing on character interactions and emotional moments
Shot 3 (6-8s): Close-ups highlighting key details and emotional expressions

🔊 AUDIO LAYERS
- Dialogue: Clear natural conversation appropriate to the scene context
- Ambient: Environmental sounds that enhance the location authenticity
- Effects: Realistic foley sounds supporting character actions and scene elements
- Music: Background music that complements the emotional tone and atmosphere

✨ VISUAL EFFECTS
- Natural lighting interaction with subjects and environment
- Depth of field for professional cinematic focus and bokeh effects
- Environmental atmosphere effects including shadows and natural movement
- Professional composition techniques for visual appeal and storytelling

🚨 IMPORTANT RULES:
NO subtitles, NO text overlays, NO on-screen text, NO dialogue captions.`,
		genre, extractLocation(req.Description), req.Description,
		req.AspectRatio, visualStyle, characterSection, req.Description)
}

var timelineWindowRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)s`)

// parseTimelineEnd returns the end of the last timeline window mentioned in
// the previous prompt, defaulting to one scene length when no window parses.
func parseTimelineEnd(previousPrompt string) int {
	matches := timelineWindowRe.FindAllStringSubmatch(previousPrompt, -1)
	if len(matches) == 0 {
		return sceneDurationSeconds
	}
	last := matches[len(matches)-1]
	end, err := strconv.ParseFloat(last[2], 64)
	if err != nil || end <= 0 {
		return sceneDurationSeconds
	}
	return int(end)
}

// continuationFallbackPrompt is the deterministic continuation template. The
// timeline picks up where the previous prompt ended and advances exactly one
// scene length in four 2-second segments.
func continuationFallbackPrompt(previousPrompt, aspectRatio string) string {
	preserved := truncateRunes(previousPrompt, 1000)

	start := parseTimelineEnd(previousPrompt)
	end := start + sceneDurationSeconds

	return fmt.Sprintf(`🎬 VEO3 CONTINUATION SCENE [PREVIOUS SCENE MAINTAINED]

This is a continuation of the previous scene with natural progression.
All character details, visual style, and technical specifications remain identical.
Only the actions, dialogue, and camera angles have been updated for continuity.

MAINTAINED ELEMENTS FROM PREVIOUS SCENE:
%s...

[Scene continues with new timeline and camera work while maintaining all original character and visual elements]

📹 TECHNICAL SPECIFICATIONS
- Aspect Ratio: %s
- Frame Rate: 24fps (cinematic feel)
- Resolution: 4K Ultra HD
- Duration: 8 seconds

🎭 CONTINUATION TIMELINE (%d-%ds)
[%d.0-%d.0s] Characters continue their natural progression from previous scene
[%d.0-%d.0s] New dialogue and actions develop the scene further
[%d.0-%d.0s] Camera captures different angles of the ongoing interaction
[%d.0-%d.0s] Scene builds toward next natural transition point

🎥 NEW CAMERA CHOREOGRAPHY
Shot 1 (%d-%ds): Different angle capturing the continuing action
Shot 2 (%d-%ds): Close-up shots for emotional depth and character focus
Shot 3 (%d-%ds): Wide shot establishing the scene's progression

🚨 CONTINUATION RULES:
- Maintain ALL character appearances and personalities exactly
- Keep same location and lighting consistency
- Progress story naturally without major jumps
- Use different camera angles for visual variety
- NO subtitles, NO text overlays, NO on-screen text`,
		preserved, aspectRatio,
		start, end,
		start, start+2,
		start+2, start+4,
		start+4, start+6,
		start+6, start+8,
		start, start+3,
		start+3, start+6,
		start+6, end)
}
