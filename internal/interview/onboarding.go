package interview

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

// Document is an uploaded file. Only its name, type and extracted text are kept.
type Document struct {
	Name string
	Type string
	Data []byte
}

func (d Document) meta() *types.FileMeta {
	return &types.FileMeta{Name: d.Name, Type: d.Type}
}

// UploadResume extracts the résumé (and optional job description), fills the
// profile with the contact details found in it and asks for whatever is
// missing. When nothing is missing, question generation starts.
func (c *Controller) UploadResume(ctx context.Context, identity string, resume Document, job *Document) error {
	snap := c.store.Snapshot()
	if snap.Session.Status != session.StatusIdle {
		return &types.TransitionError{From: string(snap.Session.Status), Command: "upload-resume"}
	}
	if len(resume.Data) == 0 {
		return &types.InvalidInputError{Field: "resume", Message: "a resume file is required"}
	}

	if _, err := c.store.Dispatch(ctx, profile.ClearChatHistory{}); err != nil {
		return err
	}
	if _, err := c.store.Dispatch(ctx, profile.SetLoading{}); err != nil {
		return err
	}

	text, err := ingestion.ExtractText(resume.Data, resume.Type)
	if err != nil {
		return c.uploadFailed(ctx, err)
	}
	cmd := profile.SetProfile{ResumeText: text, ResumeFile: resume.meta()}
	if job != nil && len(job.Data) > 0 {
		jd, err := ingestion.ExtractText(job.Data, job.Type)
		if err != nil {
			return c.uploadFailed(ctx, err)
		}
		cmd.JobDescriptionText = jd
		cmd.JobDescriptionFile = job.meta()
	}
	contact := profile.ExtractContact(text)
	cmd.FullName, cmd.Email, cmd.Phone = contact.Name, contact.Email, contact.Phone

	st, err := c.store.Dispatch(ctx, cmd)
	if err != nil {
		return err
	}
	if _, err := c.store.Dispatch(ctx, session.SetOwner{OwnerID: identity}); err != nil {
		return err
	}
	c.logger.Info("resume parsed", zap.Int("missing_fields", len(st.Profile.MissingFields())))

	c.post(ctx, systemMessage(msgResumeParsed))
	if m := profile.ParsedFieldsMessage(st.Profile); m != "" {
		c.post(ctx, systemMessage(m))
	}
	return c.advance(ctx)
}

func (c *Controller) uploadFailed(ctx context.Context, cause error) error {
	c.logger.Warn("resume extraction failed", zap.Error(cause))
	if _, err := c.store.Dispatch(ctx, profile.SetError{Message: cause.Error()}); err != nil {
		c.logger.Error("failed to record extraction error", zap.Error(err))
	}
	c.post(ctx, systemMessage(msgResumeUnreadable))
	return cause
}

// ProvideField fills the first missing contact field with value.
// Invalid values are rejected without changing any state.
func (c *Controller) ProvideField(ctx context.Context, value string) error {
	p := c.store.Snapshot().Profile
	if p.Status != profile.StatusSucceeded {
		return &types.InvalidInputError{Field: "resume", Message: "upload a resume first"}
	}
	field, ok := p.NextMissingField()
	if !ok {
		return &types.InvalidInputError{Field: "value", Message: "no field is awaiting input"}
	}
	normalized, err := profile.ValidateField(field, value)
	if err != nil {
		return err
	}

	c.post(ctx, userMessage(normalized))
	if _, err := c.store.Dispatch(ctx, profile.UpdateField{Field: field, Value: normalized}); err != nil {
		return err
	}
	return c.advance(ctx)
}

// advance asks for the next missing field, or starts generation once all are present.
func (c *Controller) advance(ctx context.Context) error {
	p := c.store.Snapshot().Profile
	if field, ok := p.NextMissingField(); ok {
		c.post(ctx, systemMessage(profile.MissingFieldPrompt(field)))
		return nil
	}
	return c.Generate(ctx)
}

// Generate requests the question set and starts the interview. It runs at most
// once per profile: repeated calls are no-ops until a generation failure or a
// reset clears the guard.
func (c *Controller) Generate(ctx context.Context) error {
	c.genMu.Lock()
	if c.generating {
		c.genMu.Unlock()
		c.logger.Debug("question generation already started")
		return nil
	}
	snap := c.store.Snapshot()
	if missing := snap.Profile.MissingFields(); len(missing) > 0 {
		c.genMu.Unlock()
		return &types.InvalidInputError{Field: string(missing[0]), Message: "required before the interview starts"}
	}
	if snap.Session.Status != session.StatusIdle {
		c.genMu.Unlock()
		return &types.TransitionError{From: string(snap.Session.Status), Command: "generate-questions"}
	}
	c.generating = true
	epoch := c.genEpoch
	c.genMu.Unlock()

	if snap.Profile.HasUserMessages() {
		c.post(ctx, systemMessage(msgGeneratingThanks))
	} else {
		c.post(ctx, systemMessage(msgGenerating))
	}

	c.logger.Info("generating questions")
	questions, err := c.generator.GenerateQuestions(ctx, llm.GenerateRequest{
		ResumeText:     snap.Profile.ResumeText,
		JobDescription: snap.Profile.JobDescriptionText,
	})
	if err == nil {
		if verr := types.ValidateQuestionSet(questions); verr != nil {
			err = &types.CollaboratorError{Operation: "generate questions", Message: "question set rejected", Cause: verr}
		}
	}
	if err != nil {
		var collab *types.CollaboratorError
		if !errors.As(err, &collab) {
			err = &types.CollaboratorError{Operation: "generate questions", Message: "generator failed", Cause: err}
		}
		c.logger.Error("question generation failed", zap.Error(err))
		if c.clearGeneratingIf(epoch) {
			c.post(ctx, systemMessage(msgGenerationFailed))
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stillGenerating(epoch) {
		c.logger.Warn("discarding questions generated before a reset")
		return types.ErrStaleSession
	}
	st, err := c.store.Dispatch(ctx, session.NewLoadQuestions(questions))
	if err != nil {
		c.clearGeneratingIf(epoch)
		return err
	}
	c.logger.Info("interview started", zap.String("session_id", st.Session.ID), zap.Int("questions", len(questions)))
	c.openQuestion(ctx, st.Session, 0)
	return nil
}

func (c *Controller) stillGenerating(epoch int) bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.generating && c.genEpoch == epoch
}

func (c *Controller) clearGeneratingIf(epoch int) bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.genEpoch != epoch {
		return false
	}
	c.generating = false
	return true
}

func (c *Controller) clearGenerating() {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.generating = false
	c.genEpoch++
}
