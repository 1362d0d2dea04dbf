package main

import (
	"encoding/csv"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/domain"
)

const defaultIngredientsCSV = "data/ingredients.csv"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
		&domain.Tag{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeIngredient{},
		&domain.Favorite{},
		&domain.ShoppingCartEntry{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// ================== ADMIN ==================
	log.Println("Creating admin user...")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Password hash failed:", err)
	}
	admin := domain.User{
		Email:        "admin@recipebox.local",
		Username:     "admin",
		FirstName:    "Site",
		LastName:     "Admin",
		PasswordHash: string(adminHash),
		IsAdmin:      true,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&admin).Error
	if err != nil {
		log.Fatal("Admin seed failed:", err)
	}
	log.Println("Admin ready: admin@recipebox.local /", password)

	// ================== TAGS ==================
	log.Println("Creating tags...")
	tags := []domain.Tag{
		{Name: "Breakfast", Slug: "breakfast"},
		{Name: "Lunch", Slug: "lunch"},
		{Name: "Dinner", Slug: "dinner"},
		{Name: "Dessert", Slug: "dessert"},
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&tags).Error
	if err != nil {
		log.Fatal("Tag seed failed:", err)
	}

	// ================== INGREDIENTS ==================
	csvPath := os.Getenv("INGREDIENTS_CSV")
	if csvPath == "" {
		csvPath = defaultIngredientsCSV
	}
	count, err := loadIngredients(db, csvPath)
	if err != nil {
		log.Fatal("Ingredient import failed:", err)
	}
	log.Printf("Imported %d ingredients from %s", count, csvPath)

	log.Println("Seed completed.")
}

// loadIngredients bulk-imports "name,measurement_unit" rows. Rows
// already present, by the (name, unit) unique index, are skipped.
func loadIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	var batch []domain.Ingredient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		batch = append(batch, domain.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}
	if len(batch) == 0 {
		return 0, nil
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
		DoNothing: true,
	}).CreateInBatches(batch, 500).Error
	if err != nil {
		return 0, err
	}

	return len(batch), nil
}
