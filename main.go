package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"renoplanner/internal/agents"
	"renoplanner/internal/config"
	"renoplanner/internal/conversation"
	"renoplanner/internal/core"
	"renoplanner/internal/inference"
	"renoplanner/internal/logger"
	"renoplanner/internal/session"
	"renoplanner/internal/store"
	"renoplanner/pkg"
)

func main() {
	// .env is optional; environment variables may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Error loading config.yaml: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	env, err := config.LoadEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("environment configuration invalid")
	}

	chatKey := env.ChatAPIKey(cfg.Inference.Provider)
	if chatKey == "" && cfg.Inference.Provider != "ollama" {
		logger.Fatal().Str("provider", cfg.Inference.Provider).Msg("chat provider API key is not set")
	}
	if env.GeminiAPIKey == "" {
		logger.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	ctx := context.Background()

	chatModel, err := inference.NewChatModel(ctx, inference.ChatConfig{
		Provider:    cfg.Inference.Provider,
		APIKey:      chatKey,
		BaseURL:     baseURL(cfg, env),
		Model:       cfg.Inference.ChatModel,
		MaxTokens:   cfg.Inference.MaxTokens,
		Temperature: cfg.Inference.Temperature,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create chat model")
	}
	textEngine := inference.NewChatEngine(chatModel)

	imageEngine, err := inference.NewImageEngine(ctx, env.GeminiAPIKey, cfg.Inference.ImageModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create image engine")
	}

	images := store.NewMemoryStore()

	var conv conversation.Repository
	if env.RedisURL != "" {
		redisConv, err := conversation.NewRedisRepository(ctx, env.RedisURL, time.Duration(cfg.Conversation.TTLSeconds)*time.Second)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory conversation store")
			conv = conversation.NewMemoryRepository()
		} else {
			defer redisConv.Close()
			conv = redisConv
		}
	} else {
		conv = conversation.NewMemoryRepository()
	}

	info, err := agents.NewInfoAgent(ctx, chatModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create info agent")
	}
	planner, err := agents.NewPlanner(cfg.Planner)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create planner")
	}
	engine := inference.NewEngine(textEngine, imageEngine)
	assessor := agents.NewAssessor(textEngine)
	synthesizer := agents.NewSynthesizer(engine, images)
	editor := agents.NewEditor(imageEngine, images)
	pipeline := core.NewExecutor(assessor, planner, synthesizer, images)

	rules := core.NewRuleClassifier(
		config.KeywordList(cfg.Routing.EditKeywords),
		config.KeywordList(cfg.Routing.PlanKeywords),
		images,
	)
	classifier, err := core.NewLLMClassifier(ctx, chatModel, images, rules)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create classifier")
	}

	dispatcher := core.NewDispatcher(classifier, info, editor, pipeline, images)
	strategy := conversation.NewRecentTurnsStrategy(cfg.Conversation.MaxTurns)
	sess := session.New(dispatcher, conv, strategy, images)

	logger.Info().Str("session_id", sess.ID()).Msg("session started")
	runREPL(ctx, sess)
}

func baseURL(cfg *config.YAMLConfig, env *config.Env) string {
	if cfg.Inference.BaseURL != "" {
		return cfg.Inference.BaseURL
	}
	if cfg.Inference.Provider == "ollama" {
		return env.OllamaBaseURL
	}
	return ""
}

func runREPL(ctx context.Context, sess *session.Session) {
	fmt.Println("Home renovation planner. Commands: /upload <room|inspiration> <path>, /renders, /refs, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var pending []session.Upload
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return

		case strings.HasPrefix(line, "/upload "):
			up, err := readUpload(strings.TrimPrefix(line, "/upload "))
			if err != nil {
				fmt.Printf("upload failed: %v\n", err)
				continue
			}
			pending = append(pending, *up)
			fmt.Printf("queued %s as %s\n", up.Name, up.Role)

		case line == "/renders":
			printAssets(ctx, sess.Renderings)

		case line == "/refs":
			printAssets(ctx, sess.References)

		default:
			result, err := sess.HandleUserMessage(ctx, line, pending)
			pending = nil
			if err != nil {
				logger.Error().Err(err).Msg("request failed")
				fmt.Println(pkg.UserMessage(err))
				continue
			}
			fmt.Println(result.Text)
			if result.Image != nil {
				if err := saveImage(result.Image); err != nil {
					fmt.Printf("could not save %s: %v\n", result.Image.Name, err)
				} else {
					fmt.Printf("saved %s\n", result.Image.Name)
				}
			}
		}
	}
}

func readUpload(args string) (*session.Upload, error) {
	kind, path, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok {
		return nil, fmt.Errorf("usage: /upload <room|inspiration> <path>")
	}

	role := pkg.RoleCurrentRoom
	if kind == "inspiration" {
		role = pkg.RoleInspiration
	}

	path = strings.TrimSpace(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &session.Upload{
		Name:     filepath.Base(path),
		Role:     role,
		MimeType: mimeFromPath(path),
		Data:     data,
	}, nil
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func printAssets(ctx context.Context, list func(context.Context) ([]*pkg.ImageAsset, error)) {
	assets, err := list(ctx)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if len(assets) == 0 {
		fmt.Println("none")
		return
	}
	for _, a := range assets {
		fmt.Printf("%s (%s, v%d)\n", a.Name, a.Role, a.Version)
	}
}

func saveImage(asset *pkg.ImageAsset) error {
	return os.WriteFile(asset.Name, asset.Data, 0o644)
}
