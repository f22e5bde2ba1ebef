package service

import (
	"characterstory/internal/entity"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Visual style labels offered to the model when building character profiles.
const (
	RealismPhotorealistic = "Photorealistic"
	RealismAnime3D        = "3D Anime Style"
	RealismAnime2D        = "2D Anime Style"
	RealismCartoon        = "Cartoon Style"
	RealismSemiRealistic  = "Semi-Realistic"
	RealismStylized       = "Stylized Art"
	RealismCinematic      = "Cinematic Style"
	RealismIllustration   = "Digital Illustration"
	RealismConceptArt     = "Concept Art Style"
)

// CharacterProfile is the structured profile the model returns for a
// character request. All fields are free-form descriptions.
type CharacterProfile struct {
	Name                 string `json:"name"`
	Nickname             string `json:"nickname"`
	Role                 string `json:"role"`
	Gender               string `json:"gender"`
	Age                  string `json:"age"`
	Ethnicity            string `json:"ethnicity"`
	BodyType             string `json:"bodyType"`
	HeightWeight         string `json:"heightWeight"`
	SkinTone             string `json:"skinTone"`
	FaceShape            string `json:"faceShape"`
	FaceFeatures         string `json:"faceFeatures"`
	Eyes                 string `json:"eyes"`
	Eyebrows             string `json:"eyebrows"`
	Lips                 string `json:"lips"`
	HairStyle            string `json:"hairStyle"`
	HairColor            string `json:"hairColor"`
	HairDetails          string `json:"hairDetails"`
	TopShirt             string `json:"topShirt"`
	BottomPantsSkirt     string `json:"bottomPantsSkirt"`
	Outerwear            string `json:"outerwear"`
	Shoes                string `json:"shoes"`
	FabricMaterial       string `json:"fabricMaterial"`
	HeadAccessories      string `json:"headAccessories"`
	Jewelry              string `json:"jewelry"`
	OtherAccessories     string `json:"otherAccessories"`
	PersonalityTraits    string `json:"personalityTraits"`
	ConfidenceLevel      string `json:"confidenceLevel"`
	CameraPresence       string `json:"cameraPresence"`
	InitialPose          string `json:"initialPose"`
	BodyLanguage         string `json:"bodyLanguage"`
	VoicePitch           string `json:"voicePitch"`
	SpeakingStyle        string `json:"speakingStyle"`
	AccentDialect        string `json:"accentDialect"`
	VoiceCharacteristics string `json:"voiceCharacteristics"`
	UniqueTraits         string `json:"uniqueTraits"`
	SpecialEffects       string `json:"specialEffects"`
	RealismType          string `json:"realismType"`
}

// determineRealismType picks a visual style from keyword hints in the
// description and role, falling back to 3D anime.
func determineRealismType(description, role string) string {
	text := strings.ToLower(description + " " + role)

	if strings.Contains(text, "anime") || strings.Contains(text, "อนิเมะ") {
		return RealismAnime3D
	}
	if strings.Contains(text, "cartoon") || strings.Contains(text, "การ์ตูน") {
		return RealismCartoon
	}
	if strings.Contains(text, "realistic") || strings.Contains(text, "สมจริง") {
		return RealismPhotorealistic
	}
	if strings.Contains(text, "cinematic") || strings.Contains(text, "ภาพยนตร์") {
		return RealismCinematic
	}
	if strings.Contains(text, "concept") || strings.Contains(text, "แนวคิด") {
		return RealismConceptArt
	}

	lowerRole := strings.ToLower(role)
	if strings.Contains(lowerRole, "นักรบ") || strings.Contains(lowerRole, "ซามูไร") || strings.Contains(lowerRole, "warrior") {
		return RealismCinematic
	}
	if strings.Contains(lowerRole, "แม่มด") || strings.Contains(lowerRole, "เวทย์") || strings.Contains(lowerRole, "magic") {
		return RealismStylized
	}
	if strings.Contains(lowerRole, "นักสืบ") || strings.Contains(lowerRole, "detective") {
		return RealismSemiRealistic
	}

	return RealismAnime3D
}

// buildCharacterInstruction builds the model instruction for a character
// profile request. The model must answer with a single JSON object.
func buildCharacterInstruction(req entity.CharacterGenerateRequest) string {
	age := req.Age
	if age == "" {
		age = "Not specified"
	}
	recommended := determineRealismType(req.Description, req.Role)

	return fmt.Sprintf(`You are a professional character designer AI. Create a detailed character profile based on the input data.

**INPUT DATA:**
- Name: %s
- Description: %s
- Gender: %s
- Age: %s
- Role: %s
- Recommended Style: %s

**INSTRUCTIONS:**
1. Create a comprehensive character profile following the exact JSON structure provided
2. Fill ALL fields - if information is not provided, create appropriate details that fit the character
3. Maintain consistency across all attributes
4. Use descriptive, visual language suitable for AI image generation
5. Keep the character culturally appropriate and visually appealing
6. Choose the most appropriate realism type from the available options

**AVAILABLE REALISM TYPES:**
- "Photorealistic": Hyper-realistic, lifelike human features
- "3D Anime Style": Modern 3D anime with detailed features
- "2D Anime Style": Traditional flat anime illustration style
- "Cartoon Style": Simplified, exaggerated cartoon features
- "Semi-Realistic": Blend of realistic and stylized elements
- "Stylized Art": Artistic interpretation with unique style
- "Cinematic Style": Movie-quality realistic rendering
- "Digital Illustration": High-quality digital art style
- "Concept Art Style": Professional concept art rendering

**REQUIRED JSON OUTPUT FORMAT:**
`+"```json"+`
{
  "name": "character full name",
  "nickname": "character nickname or short name",
  "role": "character role/profession",
  "gender": "Male/Female/Non-binary",
  "age": "age or age range",
  "ethnicity": "character ethnicity based on name and context",
  "bodyType": "body type description (athletic, slim, muscular, etc.)",
  "heightWeight": "height and weight description",
  "skinTone": "skin tone description",
  "faceShape": "face shape description (oval, round, square, etc.)",
  "faceFeatures": "detailed facial features description",
  "eyes": "eye color, shape, and characteristics",
  "eyebrows": "eyebrow description",
  "lips": "lip description",
  "hairStyle": "hair style description",
  "hairColor": "hair color",
  "hairDetails": "additional hair details (texture, length, etc.)",
  "topShirt": "top/shirt description",
  "bottomPantsSkirt": "bottom wear description",
  "outerwear": "outer garment description",
  "shoes": "footwear description",
  "fabricMaterial": "fabric and material details",
  "headAccessories": "head accessories description (or 'None')",
  "jewelry": "jewelry description (or 'None')",
  "otherAccessories": "other accessories description (or 'None')",
  "personalityTraits": "personality traits description",
  "confidenceLevel": "confidence level description",
  "cameraPresence": "camera presence description",
  "initialPose": "starting pose description",
  "bodyLanguage": "body language description",
  "voicePitch": "voice pitch description",
  "speakingStyle": "speaking style description",
  "accentDialect": "accent or dialect description",
  "voiceCharacteristics": "voice characteristics description",
  "uniqueTraits": "unique character traits",
  "specialEffects": "special visual effects if any (or 'None')",
  "realismType": "choose from available realism types above"
}
`+"```"+`

**IMPORTANT:**
- Return ONLY the JSON object, no additional text
- Ensure all fields are filled with meaningful descriptions
- Make descriptions vivid and suitable for AI image generation
- Choose realism type that best fits the character concept
- Keep cultural sensitivity in mind
- Use "None" for accessories/effects if not applicable`,
		req.Name, req.Description, req.Gender, age, req.Role, recommended)
}

var (
	jsonFenceRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)```")
	jsonBlobRe  = regexp.MustCompile(`\{[\s\S]*\}`)
)

// truncateRunes shortens s to at most n runes. Byte slicing would split Thai
// characters, which are multibyte.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// parseCharacterProfile extracts the JSON profile from a raw model response.
// Models often wrap the object in a fenced code block or surrounding prose.
func parseCharacterProfile(raw string) (*CharacterProfile, error) {
	jsonString := ""
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		jsonString = m[1]
	} else if m := jsonBlobRe.FindString(raw); m != "" {
		jsonString = m
	}
	if jsonString == "" {
		return nil, fmt.Errorf("no JSON found in model response")
	}

	var profile CharacterProfile
	if err := json.Unmarshal([]byte(jsonString), &profile); err != nil {
		return nil, fmt.Errorf("parse character profile: %w", err)
	}
	if profile.Name == "" || profile.Role == "" || profile.Gender == "" {
		return nil, fmt.Errorf("character profile missing required fields")
	}
	return &profile, nil
}

// FormatCharacterPrompt renders the structured profile into the fourteen
// section identity template returned to clients.
func FormatCharacterPrompt(character *CharacterProfile) string {
	return strings.TrimSpace(fmt.Sprintf(`📋 **Character Identity Template**

👤 **1. ชื่อ / บทบาท (Name / Role)**
• Name: %s
• Nickname: %s
• Role: %s

🧑‍🎨 **2. เพศ / อายุ / เชื้อชาติ (Gender / Age / Ethnicity)**
• Gender: %s
• Age: %s
• Ethnicity: %s

💃 **3. รูปร่าง / ผิว (Body / Skin)**
• Body type: %s
• Height & Weight: %s
• Skin tone: %s

👤 **4. ใบหน้า (Face)**
• Face shape: %s
• Face features: %s

👁️ **5. ดวงตา / คิ้ว (Eyes / Eyebrows)**
• Eyes: %s
• Eyebrows: %s

👄 **6. ริมฝีปาก (Lips)**
• Lips: %s

💇‍♀️ **7. ผม (Hair)**
• Hair style: %s
• Hair color: %s
• Hair details: %s

👗 **8. เครื่องแต่งกาย (Outfit)**
• Top/Shirt: %s
• Bottom/Pants/Skirt: %s
• Outerwear: %s
• Shoes: %s
• Fabric/Material: %s

💎 **9. เครื่องประดับ (Accessories)**
• Head accessories: %s
• Jewelry: %s
• Other accessories: %s

🎭 **10. บุคลิกภาพ (Personality)**
• Personality traits: %s
• Confidence level: %s
• Camera presence: %s

🕴️ **11. ท่าทางเริ่มต้น (Starting Pose)**
• Initial pose: %s
• Body language: %s

🎙️ **12. โทนเสียง (Voice Tone)**
• Voice pitch: %s
• Speaking style: %s
• Accent/Dialect: %s
• Voice characteristics: %s

✨ **13. ลักษณะพิเศษ (Special Features)**
• Unique traits: %s
• Special effects: %s

🖼️ **14. ภาพความสมจริง (Visual Style)**
• Realism type: %s`,
		character.Name, character.Nickname, character.Role,
		character.Gender, character.Age, character.Ethnicity,
		character.BodyType, character.HeightWeight, character.SkinTone,
		character.FaceShape, character.FaceFeatures,
		character.Eyes, character.Eyebrows,
		character.Lips,
		character.HairStyle, character.HairColor, character.HairDetails,
		character.TopShirt, character.BottomPantsSkirt, character.Outerwear, character.Shoes, character.FabricMaterial,
		character.HeadAccessories, character.Jewelry, character.OtherAccessories,
		character.PersonalityTraits, character.ConfidenceLevel, character.CameraPresence,
		character.InitialPose, character.BodyLanguage,
		character.VoicePitch, character.SpeakingStyle, character.AccentDialect, character.VoiceCharacteristics,
		character.UniqueTraits, character.SpecialEffects,
		character.RealismType))
}

// characterFallbackPrompt is the deterministic template used when the model
// cannot produce a profile.
func characterFallbackPrompt(req entity.CharacterGenerateRequest) string {
	role := req.Role
	if role == "" {
		role = "ไม่ระบุ"
	}
	gender := req.Gender
	if gender == "" {
		gender = "ไม่ระบุ"
	}
	age := req.Age
	if age == "" {
		age = "ไม่ระบุ"
	}

	return strings.TrimSpace(fmt.Sprintf(`📋 **Character Identity Template**

👤 **1. ชื่อ / บทบาท (Name / Role)**
• Name: %s
• Role: %s

🧑‍🎨 **2. เพศ / อายุ / เชื้อชาติ (Gender / Age / Ethnicity)**
• Gender: %s
• Age: %s

📝 **รายละเอียด:**
%s

⚠️ **หมายเหตุ:** สร้างด้วย Fallback Template`,
		req.Name, role, gender, age, req.Description))
}
