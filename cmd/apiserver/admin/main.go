package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"matchgraph/internal/auth"
	"matchgraph/internal/config"
	"matchgraph/internal/logging"
	"matchgraph/internal/services"
	"matchgraph/internal/storage"
)

func usage() {
	fmt.Println("使用方法:")
	fmt.Println("  ./admin migrate                        - 执行数据库迁移")
	fmt.Println("  ./admin issue-token <userID>           - 为用户签发测试用 JWT")
	fmt.Println("  ./admin show-interaction <id>          - 显示互动请求及其评分")
	fmt.Println("  ./admin list-interactions <userID> [n] - 列出用户最近的互动请求")
	fmt.Println("  ./admin show-endorsements <userID>     - 显示用户给出和收到的背书")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(os.Getenv("MATCHGRAPH_CONFIG"))
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Warn("invalid log configuration, using defaults")
	}

	if os.Args[1] == "issue-token" {
		userID := parseUUIDArg(2, "用户ID")
		token, err := auth.GenerateToken(userID, cfg.Auth)
		if err != nil {
			log.Fatalf("签发令牌失败: %v", err)
		}
		fmt.Println(token)
		return
	}

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		if err := storage.AutoMigrateTables(db); err != nil {
			log.Fatalf("迁移失败: %v", err)
		}
		fmt.Println("迁移完成")

	case "show-interaction":
		id := parseUUIDArg(2, "互动ID")
		interactions := services.NewInteractionService(db, nil, cfg.Kafka, cfg.Pagination)
		ratings := services.NewRatingService(db, nil, cfg.Kafka)
		showInteraction(ctx, interactions, ratings, id)

	case "list-interactions":
		userID := parseUUIDArg(2, "用户ID")
		limit := 20
		if len(os.Args) > 3 {
			if limit, err = strconv.Atoi(os.Args[3]); err != nil {
				log.Fatalf("无效的数量: %v", err)
			}
		}
		interactions := services.NewInteractionService(db, nil, cfg.Kafka, cfg.Pagination)
		list, err := interactions.ListUserInteractions(ctx, userID, "", 0, limit)
		if err != nil {
			log.Fatalf("获取互动列表失败: %v", err)
		}
		fmt.Printf("用户 %s 的互动 (%d 条):\n", userID, len(list))
		fmt.Println("--------------------------------------")
		for i, it := range list {
			fmt.Printf("#%d %s  %s -> %s  状态: %s  创建时间: %s\n",
				i+1, it.ID, it.InitiatorID, it.TargetID, it.Status, it.CreatedAt.Format("2006-01-02 15:04:05"))
		}

	case "show-endorsements":
		userID := parseUUIDArg(2, "用户ID")
		showEndorsements(ctx, services.NewEndorsementService(db, nil, cfg.Kafka), userID)

	default:
		usage()
		log.Fatalf("未知命令: %s", os.Args[1])
	}
}

func parseUUIDArg(pos int, name string) uuid.UUID {
	if len(os.Args) <= pos {
		log.Fatalf("需要指定%s", name)
	}
	id, err := uuid.Parse(os.Args[pos])
	if err != nil {
		log.Fatalf("无效的%s: %v", name, err)
	}
	return id
}

func showInteraction(ctx context.Context, interactions services.InteractionService, ratings services.RatingService, id uuid.UUID) {
	it, err := interactions.GetInteraction(ctx, id)
	if err != nil {
		log.Fatalf("获取互动失败: %v", err)
	}

	fmt.Printf("互动 %s 信息:\n", id)
	fmt.Println("--------------------------------------")
	fmt.Printf("发起者: %s\n", it.InitiatorID)
	fmt.Printf("目标: %s\n", it.TargetID)
	fmt.Printf("状态: %s\n", it.Status)
	if it.Message != nil {
		fmt.Printf("留言: %s\n", *it.Message)
	}
	fmt.Printf("创建时间: %s\n", it.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("更新时间: %s\n", it.UpdatedAt.Format("2006-01-02 15:04:05"))

	list, err := ratings.ListRatingsWithRater(ctx, id)
	if err != nil {
		fmt.Printf("获取评分失败: %v\n", err)
		return
	}
	fmt.Printf("评分 (%d 条):\n", len(list))
	for _, r := range list {
		fmt.Printf("  %s (%s): %d\n", r.RaterEmail, r.RaterID, r.Score)
	}
}

func showEndorsements(ctx context.Context, endorsements services.EndorsementService, userID uuid.UUID) {
	given, err := endorsements.ListByEndorserWithUsers(ctx, userID)
	if err != nil {
		log.Fatalf("获取背书失败: %v", err)
	}
	received, err := endorsements.ListByEndorsedWithUsers(ctx, userID)
	if err != nil {
		log.Fatalf("获取背书失败: %v", err)
	}

	fmt.Printf("用户 %s 给出的背书 (%d 条):\n", userID, len(given))
	for _, e := range given {
		fmt.Printf("  -> %s  置信度: %.2f\n", e.UserEmail, e.Confidence)
	}
	fmt.Printf("用户 %s 收到的背书 (%d 条):\n", userID, len(received))
	for _, e := range received {
		fmt.Printf("  <- %s  置信度: %.2f\n", e.UserEmail, e.Confidence)
	}
}
