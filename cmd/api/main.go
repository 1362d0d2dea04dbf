package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/modules/auth"
	"recipebox/internal/modules/recipe"
	"recipebox/internal/modules/reference"
	"recipebox/internal/modules/subscription"
	"recipebox/internal/pkg/images"
	jwtsvc "recipebox/internal/pkg/jwt"
	"recipebox/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	cartRepo := repository.NewShoppingCartRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	store := images.NewStore(cfg.MediaRoot, cfg.MediaURLBase)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService, subscriptionRepo, store, cfg.PageSize)

	referenceHandler := reference.NewHandler(tagRepo, ingredientRepo)

	recipeService := recipe.NewService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		favoriteRepo,
		cartRepo,
		subscriptionRepo,
	)
	recipeHandler := recipe.NewHandler(recipeService, store, cfg.PageSize)

	subscriptionService := subscription.NewService(userRepo, recipeRepo, subscriptionRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService, store, cfg.PageSize)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.Authenticate(j))

	r.Static(cfg.MediaURLBase, cfg.MediaRoot)

	api := r.Group("/api")
	{
		authHandler.RegisterRoutes(api)
		referenceHandler.RegisterRoutes(api)
		recipeHandler.RegisterRoutes(api)
		subscriptionHandler.RegisterRoutes(api)
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
