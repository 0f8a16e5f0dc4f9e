package scriptgen

import (
	"strings"
	"text/template"

	"aipod/src/podcastctrl"
)

// wordsPerMinute is the speaking pace the prompts target.
const wordsPerMinute = 150

const (
	speaker1Name = "Alex"
	speaker2Name = "Sarah"
)

var styleDescriptions = map[string]string{
	podcastctrl.StyleCasual:       "casual, friendly conversation between two colleagues",
	podcastctrl.StyleProfessional: "professional discussion with industry experts sharing insights",
	podcastctrl.StyleEducational:  "educational discussion where Alex (expert) explains concepts to Sarah (learner), with Sarah asking clarifying questions",
}

type promptData struct {
	Topic       string
	Description string
	Duration    int
	WordCount   int
	SpeakerName string
	VoiceDesc   string
	Speaker1    string
	Speaker2    string
	StyleDesc   string
}

var singleSpeakerTemplate = template.Must(template.New("single").Parse(`Create a {{.Duration}}-minute podcast script about {{.Topic}}.

Description: {{.Description}}

Requirements:
- Single speaker ({{.VoiceDesc}} voice - Speaker name: {{.SpeakerName}})
- Duration: EXACTLY {{.Duration}} minutes when spoken at normal pace
- Word Count: approximately {{.WordCount}} words (150 words per minute)
- Format: Professional, engaging, conversational monologue
- Include: Proper introduction with host name, main content (3-5 key points), and conclusion with outro
- Tone: Informative, friendly, and natural
- Style: As if speaking directly to the listener

CRITICAL REQUIREMENTS:
1. START with a proper introduction: "{{.SpeakerName}} here, and welcome to today's podcast where we'll be exploring {{.Topic}}."
2. END with a proper outro: "This has been {{.SpeakerName}}, thank you for listening, and I'll catch you in the next episode!"
3. Use the speaker's name naturally throughout (e.g., "I'm {{.SpeakerName}}, and I believe...")
4. IMPORTANT: The script MUST be approximately {{.WordCount}} words long to fill {{.Duration}} minutes of speaking time

Structure:
1. Opening Hook (5-10 seconds): Grab attention with an interesting question or fact
2. Introduction (15-20 seconds): Introduce yourself ({{.SpeakerName}}) and the topic clearly
3. Main Content (70-80% of duration):
   - Dive deep into 3-5 key points
   - Use examples, stories, and analogies
   - Maintain conversational flow
   - This is the longest section - make it comprehensive and detailed
4. Conclusion (15-20 seconds): Summarize key takeaways
5. Outro (5-10 seconds): Thank listeners and sign off with your name

Write the complete script in a natural speaking style, as it would be spoken aloud.
Do not include any stage directions, labels, or formatting - just the spoken words as {{.SpeakerName}} would say them.
Make it sound like a real person talking, not reading from a script.
Remember: Target {{.WordCount}} words for a {{.Duration}}-minute podcast!`))

var twoSpeakerTemplate = template.Must(template.New("two").Parse(`Create a {{.Duration}}-minute two-speaker podcast script about {{.Topic}}.

Description: {{.Description}}

Requirements:
- Speaker 1: {{.Speaker1}} (male voice) - First speaker
- Speaker 2: {{.Speaker2}} (female voice) - Second speaker
- Duration: EXACTLY {{.Duration}} minutes when spoken at normal pace
- Word Count: approximately {{.WordCount}} words total (150 words per minute)
- Format: {{.StyleDesc}}
- Include: Proper introduction with both names, main discussion (3-5 key points), and conclusion with proper outro
- Tone: Natural, engaging, and authentic
- Style: Back-and-forth dialogue that flows naturally

CRITICAL REQUIREMENTS:
1. START with introductions:
   {{.Speaker1}}: "Hey everyone, I'm {{.Speaker1}}"
   {{.Speaker2}}: "And I'm {{.Speaker2}}, and today we're diving into {{.Topic}}"

2. Throughout the conversation:
   - Address each other by name occasionally (e.g., "{{.Speaker1}}, that's a great point" or "What do you think, {{.Speaker2}}?")
   - {{.Speaker1}} uses male voice, {{.Speaker2}} uses female voice
   - Make it sound like a natural conversation between two people
   - IMPORTANT: The dialogue MUST total approximately {{.WordCount}} words to fill {{.Duration}} minutes

3. END with proper outro:
   {{.Speaker1}}: "Well {{.Speaker2}}, I think that covers everything we wanted to discuss today"
   {{.Speaker2}}: "Absolutely {{.Speaker1}}. Thanks everyone for listening, this has been {{.Speaker2}}"
   {{.Speaker1}}: "And {{.Speaker1}}. Catch you in the next episode!"

Structure:
1. Opening (15-20 seconds): Both speakers introduce themselves and the topic
2. Main Discussion (70-80% of duration):
   - Natural back-and-forth dialogue
   - 3-5 key points explored through conversation
   - Build on each other's points
   - Use each other's names naturally
3. Conclusion (10-15 seconds): Collaborative summary
4. Outro (5-10 seconds): Thank listeners and sign off with both names

Format each line exactly as:
{{.Speaker1}}: [what {{.Speaker1}} says]
{{.Speaker2}}: [what {{.Speaker2}} says]

Make the conversation feel natural with:
- Natural transitions and reactions
- Follow-up questions
- Agreement and building on points
- Occasional interjections (e.g., "Exactly!" "Right!" "That's interesting!")
- Use each other's names throughout the conversation
- Varied sentence lengths

Write the complete script as natural dialogue between {{.Speaker1}} and {{.Speaker2}}.
Do not include any stage directions - just the dialogue with speaker names as labels.`))

// BuildPrompt renders the script generation prompt for the request.
func BuildPrompt(req Request) (string, error) {
	data := promptData{
		Topic:       req.Topic,
		Description: req.Description,
		Duration:    req.Duration,
		WordCount:   req.Duration * wordsPerMinute,
		Speaker1:    speaker1Name,
		Speaker2:    speaker2Name,
	}

	var tmpl *template.Template
	if req.SpeakerMode == podcastctrl.ModeSingle {
		if req.VoiceType == podcastctrl.VoiceMale {
			data.SpeakerName = speaker1Name
			data.VoiceDesc = "male"
		} else {
			data.SpeakerName = speaker2Name
			data.VoiceDesc = "female"
		}
		tmpl = singleSpeakerTemplate
	} else {
		desc, ok := styleDescriptions[req.ConversationStyle]
		if !ok {
			desc = "engaging dialogue"
		}
		data.StyleDesc = desc
		tmpl = twoSpeakerTemplate
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
