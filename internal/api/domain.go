package api

import (
	"github.com/kbristol/sift/internal/actions"
	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/config"
	"github.com/kbristol/sift/internal/engine"
	"github.com/kbristol/sift/internal/mailbox"
	"github.com/kbristol/sift/internal/messages"
	"github.com/kbristol/sift/internal/priority"
	"github.com/kbristol/sift/internal/triage"
	"github.com/kbristol/sift/internal/vector"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Triage triage.System

	// Mailbox and Approval are the in-process channel implementations.
	// Production adapters replace them behind the same interfaces.
	Mailbox  *mailbox.Memory
	Approval *approval.Recorder
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	mailboxProvider := mailbox.NewMemory()
	approvalChannel := approval.NewRecorder()

	messageSystem := messages.New(db, runtime.Logger)
	vectorStore := vector.NewPostgres(db)

	contextAssembler := assembler.New(
		messageSystem,
		vectorStore,
		runtime.Inference,
		runtime.Logger,
		cfg.Triage.Assembler,
	)

	itemClassifier := classifier.New(
		runtime.Inference,
		runtime.Logger,
		cfg.Triage.Classifier,
	)

	checkpoints := engine.NewCheckpointStore(db, runtime.Logger)

	eng := engine.New(engine.Dependencies{
		Checkpoints: checkpoints,
		Messages:    messageSystem,
		Vectors:     vectorStore,
		Embedder:    runtime.Inference,
		Assembler:   contextAssembler,
		Priority:    priority.NewScorer(cfg.Triage.Priority),
		Classifier:  itemClassifier,
		Approval:    approvalChannel,
		Actions:     actions.New(mailboxProvider, runtime.Logger),
		Logger:      runtime.Logger,
	})

	triageSystem := triage.New(
		eng,
		checkpoints,
		mailboxProvider,
		runtime.Logger,
		runtime.Pagination,
		cfg.Triage.Workers,
	)

	return &Domain{
		Triage:   triageSystem,
		Mailbox:  mailboxProvider,
		Approval: approvalChannel,
	}
}
