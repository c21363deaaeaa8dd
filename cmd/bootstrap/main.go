package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/wire"
	"z-article-ai-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 建表
	if err := dataLayer.PgClient.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	fmt.Println("Schema migrated.")

	// 4. 创建默认租户
	tenantID := envOr("BOOTSTRAP_TENANT_ID", "default")
	tenant, err := dataLayer.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		log.Fatalf("failed to check tenant existence: %v", err)
	}
	if tenant == nil {
		fmt.Printf("Creating default tenant: %s...\n", tenantID)
		tenant = entity.NewTenant(tenantID, "Default Site", tenantID)
		if err := dataLayer.TenantRepo.Create(ctx, tenant); err != nil {
			log.Fatalf("failed to create default tenant: %v", err)
		}
	} else {
		fmt.Printf("Default tenant already exists: %s\n", tenantID)
	}

	// 5. 示例分类、写手与图片风格
	if c, err := dataLayer.CategoryRepo.GetByID(ctx, tenantID, "travel"); err != nil {
		log.Fatalf("failed to check category: %v", err)
	} else if c == nil {
		if err := dataLayer.CategoryRepo.Create(ctx, &entity.Category{
			ID:          "travel",
			TenantID:    tenantID,
			Name:        "Travel",
			Slug:        "travel",
			Description: "Destinations, seasonal highlights and practical trip planning.",
		}); err != nil {
			log.Fatalf("failed to create category: %v", err)
		}
		fmt.Println("Category travel created.")
	}

	if w, err := dataLayer.WriterRepo.GetByID(ctx, tenantID, "w1"); err != nil {
		log.Fatalf("failed to check writer: %v", err)
	} else if w == nil {
		if err := dataLayer.WriterRepo.Create(ctx, &entity.Writer{
			ID:       "w1",
			TenantID: tenantID,
			Name:     "Editorial Team",
			Bio:      "Staff writers covering travel across Japan.",
			Style:    "Friendly and concrete, short paragraphs, practical tips.",
		}); err != nil {
			log.Fatalf("failed to create writer: %v", err)
		}
		fmt.Println("Writer w1 created.")
	}

	if p, err := dataLayer.PatternRepo.GetByID(ctx, tenantID, "p1"); err != nil {
		log.Fatalf("failed to check image pattern: %v", err)
	} else if p == nil {
		if err := dataLayer.PatternRepo.Create(ctx, &entity.ImagePattern{
			ID:       "p1",
			TenantID: tenantID,
			Name:     "Photo",
			Prompt:   "Natural-light editorial photograph, wide composition, no text, no watermark",
			Size:     "1536x1024",
		}); err != nil {
			log.Fatalf("failed to create image pattern: %v", err)
		}
		fmt.Println("Image pattern p1 created.")
	}

	// 6. 开发用访问令牌
	if cfg.Security.JWT.Secret != "" {
		ttl := cfg.Security.JWT.Expiration
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		token, err := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer).
			GenerateToken(tenantID, "bootstrap", utils.RoleEditor, ttl)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Printf("Editor token for %s (valid %s):\n%s\n", tenantID, ttl, token)
	}

	fmt.Println("Bootstrap completed successfully.")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
