package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	openai "github.com/sashabaranov/go-openai"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/database"
	"github.com/beforest/forest-guide/internal/common/logger"
	"github.com/beforest/forest-guide/internal/common/observability"
	"github.com/beforest/forest-guide/internal/crew"
	"github.com/beforest/forest-guide/internal/knowledge"
	"github.com/beforest/forest-guide/internal/manychat"
	"github.com/beforest/forest-guide/internal/notify"
	"github.com/beforest/forest-guide/internal/pipeline/router"
	"github.com/beforest/forest-guide/internal/store"
	"github.com/beforest/forest-guide/internal/websearch"
	"github.com/beforest/forest-guide/internal/webhook"
)

const (
	startupRetries = 5
	startupBackoff = 2 * time.Second
	shutdownGrace  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting forest-guide", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		log.Error("postgres unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	rdb, err := connectRedis(ctx, cfg, log)
	if err != nil {
		log.Error("redis unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer rdb.Close()

	es, err := connectElasticsearch(cfg, log)
	if err != nil {
		log.Error("elasticsearch unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if err := store.EnsureSchema(ctx, pg.DB); err != nil {
		log.Error("schema setup failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// repositories
	users := store.NewUserRepository(pg.DB)
	messages := store.NewMessageRepository(pg.DB)
	leads := store.NewLeadRepository(pg.DB)
	followUps := store.NewFollowUpRepository(pg.DB)
	events := store.NewEventRepository(pg.DB)
	dedup := store.NewDedupRegistry(rdb.Client)

	// response collaborators
	searcher := knowledge.NewSearcher(es.Client, cfg.Knowledge.Index)
	catalog := knowledge.NewProductCatalog(pg.DB)
	brave := websearch.NewClient(cfg.WebSearch, log)

	llm := newOpenAIClient(cfg.OpenAI)
	history := &chatHistory{users: users, messages: messages}
	pipeline := crew.New(llm, cfg.OpenAI.Model, searcher, brave, history, log)

	responder := router.New(catalog, searcher, pipeline, log)

	// outbound side effects
	sender := manychat.NewClient(cfg.ManyChat, log)
	alerter := newNotifier(ctx, cfg, log)

	service := webhook.NewService(
		dedup, users, messages, leads, followUps, events,
		responder, sender, alerter, log,
	)
	handler := webhook.NewHandler(service, obs, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      webhook.NewRouter(handler),
		ReadTimeout:  time.Duration(cfg.Server.RequestTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		log.Error("server failed", map[string]interface{}{"error": err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	log.Info("stopped", nil)
}

func connectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	var lastErr error
	for attempt := 1; attempt <= startupRetries; attempt++ {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err == nil {
			if err = pg.Ping(ctx); err == nil {
				return pg, nil
			}
			pg.Close()
		}
		lastErr = err
		log.Warn("postgres connect failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(attempt) * startupBackoff)
	}
	return nil, lastErr
}

func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	var lastErr error
	for attempt := 1; attempt <= startupRetries; attempt++ {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err == nil {
			if err = rdb.Ping(ctx); err == nil {
				return rdb, nil
			}
			rdb.Close()
		}
		lastErr = err
		log.Warn("redis connect failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(attempt) * startupBackoff)
	}
	return nil, lastErr
}

func connectElasticsearch(cfg *config.Config, log logger.Logger) (*database.ElasticsearchClient, error) {
	var lastErr error
	for attempt := 1; attempt <= startupRetries; attempt++ {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			if err = es.Ping(); err == nil {
				return es, nil
			}
		}
		lastErr = err
		log.Warn("elasticsearch connect failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(attempt) * startupBackoff)
	}
	return nil, lastErr
}

func newOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
	}
	return openai.NewClientWithConfig(clientCfg)
}

// newNotifier wires SES and SNS. When AWS credentials are unavailable the
// alert channels are disabled and the service runs without them.
func newNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) *notify.Notifier {
	alerts := cfg.Alerts

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(alerts.AWSRegion))
	if err != nil {
		log.Warn("aws config unavailable, alerts disabled", map[string]interface{}{
			"error": err.Error(),
		})
		alerts.EmailEnabled = false
		alerts.SMSEnabled = false
		return notify.New(nil, nil, alerts, log)
	}

	return notify.New(ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg), alerts, log)
}

// chatHistory adapts the message store to the crew's memory stage. The
// conversation id is the ManyChat contact id.
type chatHistory struct {
	users    *store.UserRepository
	messages *store.MessageRepository
}

func (h *chatHistory) Recent(ctx context.Context, conversationID string, limit int) ([]crew.Turn, error) {
	u, err := h.users.GetOrCreate(ctx, conversationID, "", "")
	if err != nil {
		return nil, err
	}

	rows, err := h.messages.RecentHistory(ctx, u.ID, limit)
	if err != nil {
		return nil, err
	}

	turns := make([]crew.Turn, 0, len(rows))
	for _, row := range rows {
		role := "user"
		if row.Direction == store.DirectionOutbound {
			role = "assistant"
		}
		turns = append(turns, crew.Turn{Role: role, Text: row.Text})
	}
	return turns, nil
}
