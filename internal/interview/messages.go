package interview

import (
	"fmt"

	"github.com/jonathan/interview-coach/internal/types"
)

// Transcript texts posted by the controller.
const (
	msgResumeParsed      = "Resume parsed successfully! I will now ask for any missing information."
	msgResumeUnreadable  = "I apologize, but I had trouble reading your resume. Could you please try uploading a different file?"
	msgGeneratingThanks  = "Thank you! I have all the information I need. Generating interview questions now, please wait..."
	msgGenerating        = "Generating interview questions now, please wait..."
	msgGenerationFailed  = "Sorry, I encountered an error while generating questions. Please try starting the process over."
	msgInterviewComplete = "Interview completed. Generating your results..."
	msgEvaluationFailed  = "Sorry, I encountered an error while evaluating your answers. Please try again."
)

func systemMessage(text string) types.ChatMessage {
	return types.ChatMessage{Sender: types.SenderSystem, Text: text}
}

func userMessage(text string) types.ChatMessage {
	return types.ChatMessage{Sender: types.SenderUser, Text: text}
}

// questionMessage renders the question at index i of n. Easy questions carry
// their options as a multiple-choice message.
func questionMessage(q types.Question, i, n int) types.ChatMessage {
	if q.Difficulty == types.DifficultyEasy {
		m := systemMessage(q.Text)
		m.Type = types.MessageTypeMCQ
		m.Options = append([]string(nil), q.Options...)
		return m
	}
	return systemMessage(fmt.Sprintf("Question %d/%d (%s):\n\n%s", i+1, n, q.Difficulty, q.Text))
}
