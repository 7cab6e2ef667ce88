package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studybuddy/internal/ai"
	"studybuddy/internal/app"
	"studybuddy/internal/cache"
	"studybuddy/internal/config"
	"studybuddy/internal/embedding"
	"studybuddy/internal/model"
	mysqlClient "studybuddy/internal/platform/mysql"
	rabbitmqClient "studybuddy/internal/platform/rabbitmq"
	redisClient "studybuddy/internal/platform/redis"
	"studybuddy/internal/repository"
	"studybuddy/internal/vectorstore"
	"studybuddy/internal/vectorstore/bolt"
	"studybuddy/internal/vectorstore/memory"
	"studybuddy/internal/vectorstore/pinecone"
	"studybuddy/internal/vectorstore/qdrant"
	"studybuddy/internal/worker"
)

// App holds every long-lived dependency. Optional infrastructure (MySQL,
// Redis, RabbitMQ) is nil when disabled in the config.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	MySQL            *gorm.DB
	Redis            *redis.Client
	MQConn           *amqp.Connection
	EvaluationWorker *worker.EvaluationPersistWorker

	Embedder embedding.Embedder
	Store    vectorstore.Store

	Documents   *repository.DocumentRepository
	Evaluations *repository.EvaluationRepository

	RAG   *app.RAGService
	Tutor *app.TutorService
	Quiz  *app.QuizService
	Eval  *app.EvalService
	Study *app.StudyService
	Auth  *app.AuthService

	StartedAt time.Time

	closers []func() error
}

// New connects the configured infrastructure and wires the services. cfg is
// expected to be validated.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var ledger app.DocumentLedger
	if cfg.MySQL.Enabled {
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), &model.Document{}, &model.Evaluation{})
		if err != nil {
			return nil, err
		}
		a.MySQL = db
		a.closers = append(a.closers, func() error { return mysqlClient.Close(db) })
		a.Documents = repository.NewDocumentRepository(db)
		a.Evaluations = repository.NewEvaluationRepository(db)
		ledger = a.Documents
	}

	var quizStore app.QuizStore = cache.NewMemoryQuizStore(cfg.QuizTTL())
	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
		quizStore = cache.NewRedisQuizStore(client, cfg.QuizTTL())
	}

	recorder, err := a.evaluationRecorder(ctx)
	if err != nil {
		return nil, err
	}

	a.Embedder, err = newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := a.Embedder.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	a.Store, err = newVectorStore(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := a.Store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	llm := ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})

	a.RAG = app.NewRAGService(a.Embedder, a.Store, ledger, app.RAGOptions{
		ChunkWords: cfg.RAG.ChunkWords,
		EmbedBatch: cfg.RAG.EmbedBatch,
	})
	a.Tutor = app.NewTutorService(a.RAG, llm, cfg.RAG.TutorTopK)
	a.Quiz = app.NewQuizService(a.RAG, llm, quizStore, cfg.RAG.QuestionTopK)
	a.Eval = app.NewEvalService(llm, a.Quiz, recorder)
	a.Study = app.NewStudyService(a.Tutor, a.Quiz)
	a.Auth = app.NewAuthService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.JWTExpiration())

	if err := a.RAG.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	logger.Info("application wired",
		zap.String("embedder", a.Embedder.ModelName()),
		zap.String("vector_store", cfg.VectorStore.Provider),
		zap.String("llm_model", llm.Model()),
		zap.Bool("mysql", a.MySQL != nil),
		zap.Bool("redis", a.Redis != nil),
		zap.Bool("rabbitmq", a.MQConn != nil),
	)
	return a, nil
}

// evaluationRecorder picks where gradings go: the queue when RabbitMQ is on,
// MySQL directly when only MySQL is on, nowhere otherwise.
func (a *App) evaluationRecorder(ctx context.Context) (app.EvaluationRecorder, error) {
	cfg := a.Config
	if !cfg.RabbitMQ.Enabled {
		if a.Evaluations == nil {
			return nil, nil
		}
		return app.EvaluationRecorderFunc(a.Evaluations.Create), nil
	}

	if a.Evaluations == nil {
		return nil, fmt.Errorf("%w: rabbitmq needs mysql to persist evaluations", config.ErrInvalidValue)
	}

	conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.EvaluationQueue)
	if err != nil {
		return nil, err
	}
	a.MQConn = conn
	a.closers = append(a.closers, conn.Close)

	a.EvaluationWorker = worker.NewEvaluationPersistWorker(conn, a.Evaluations, cfg.RabbitMQ.EvaluationQueue, a.Logger)
	if err := a.EvaluationWorker.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("start evaluation worker failed: %w", err)
	}
	a.closers = append(a.closers, func() error { a.EvaluationWorker.Close(); return nil })

	return app.EvaluationRecorderFunc(rabbitmqClient.NewEvaluationPublisher(conn, cfg.RabbitMQ.EvaluationQueue).Publish), nil
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	ec := cfg.Embedding
	switch ec.Provider {
	case "onnx":
		return embedding.NewONNXEmbedder(embedding.ONNXConfig{
			ModelName:     ec.Model,
			ModelPath:     ec.ONNXModelPath,
			VocabPath:     ec.VocabPath,
			SharedLibPath: ec.ONNXSharedLibPath,
			Dimension:     ec.Dimension,
			MaxTokens:     ec.MaxTokens,
		}), nil
	case "openai":
		baseURL, apiKey := ec.BaseURL, ec.APIKey
		if baseURL == "" {
			baseURL = cfg.LLM.BaseURL
		}
		if apiKey == "" {
			apiKey = cfg.LLM.APIKey
		}
		client := ai.NewOpenAICompatibleClient(ai.ChatConfig{BaseURL: baseURL, APIKey: apiKey, Timeout: cfg.LLMTimeout()})
		return embedding.NewRemoteEmbedder(client, ec.Model, ec.Dimension), nil
	case "hashing":
		return embedding.NewHashingEmbedder(ec.Dimension), nil
	}
	return nil, fmt.Errorf("%w: embedding provider %q", config.ErrInvalidValue, ec.Provider)
}

func newVectorStore(cfg *config.Config) (vectorstore.Store, error) {
	vc := cfg.VectorStore
	switch vc.Provider {
	case "pinecone":
		return pinecone.New(pinecone.Config{
			APIKey:          vc.Pinecone.APIKey,
			Index:           vc.Pinecone.Index,
			Cloud:           vc.Pinecone.Cloud,
			Region:          vc.Pinecone.Region,
			ControlPlaneURL: vc.Pinecone.ControlPlaneURL,
			Namespace:       vc.Pinecone.Namespace,
			Timeout:         30 * time.Second,
		}), nil
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:        vc.Qdrant.URL,
			APIKey:     vc.Qdrant.APIKey,
			Collection: vc.Qdrant.Collection,
			Timeout:    30 * time.Second,
		}), nil
	case "bolt":
		store, err := bolt.Open(vc.Bolt.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return memory.New(), nil
	}
	return nil, fmt.Errorf("%w: vector store provider %q", config.ErrInvalidValue, vc.Provider)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
