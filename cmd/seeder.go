package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/care-management/internal/authz"
	companymodel "github.com/frahmantamala/care-management/internal/core/datamodel/company"
	usermodel "github.com/frahmantamala/care-management/internal/core/datamodel/user"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"company_memberships", "holding_memberships", "sector_histories", "contracts", "users", "sectors", "companies", "holdings", "roles"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		roles := []usermodel.Role{
			{Name: authz.RoleClientAdmin, Interface: string(authz.InterfaceClient)},
			{Name: authz.RoleCoach, Interface: string(authz.InterfaceClient)},
			{Name: authz.RoleAuxiliary, Interface: string(authz.InterfaceClient)},
			{Name: authz.RolePlanningReferent, Interface: string(authz.InterfaceClient)},
			{Name: authz.RoleVendorAdmin, Interface: string(authz.InterfaceVendor)},
			{Name: authz.RoleTrainingManager, Interface: string(authz.InterfaceVendor)},
			{Name: authz.RoleTrainer, Interface: string(authz.InterfaceVendor)},
			{Name: authz.RoleHoldingAdmin, Interface: string(authz.InterfaceHolding)},
		}
		roleIDs := make(map[string]int64)
		for _, r := range roles {
			var existing usermodel.Role
			if err := db.Where("name = ?", r.Name).First(&existing).Error; err == nil {
				roleIDs[r.Name] = existing.ID
				continue
			}
			if err := db.Create(&r).Error; err != nil {
				log.Fatalf("failed to seed role %s: %v", r.Name, err)
			}
			roleIDs[r.Name] = r.ID
		}
		fmt.Println("Seeded canonical roles")

		holding := companymodel.Holding{Name: "Groupe Demo"}
		if err := db.Where("name = ?", holding.Name).FirstOrCreate(&holding).Error; err != nil {
			log.Fatalf("failed to seed holding: %v", err)
		}

		company := companymodel.Company{
			Name:          "Demo Care",
			HoldingID:     &holding.ID,
			Subscriptions: map[string]bool{authz.SubscriptionERP: true},
		}
		if err := db.Where("name = ?", company.Name).FirstOrCreate(&company).Error; err != nil {
			log.Fatalf("failed to seed company: %v", err)
		}

		trial := companymodel.Company{
			Name:          "Demo Care Trial",
			HoldingID:     &holding.ID,
			Subscriptions: map[string]bool{},
		}
		if err := db.Where("name = ?", trial.Name).FirstOrCreate(&trial).Error; err != nil {
			log.Fatalf("failed to seed company: %v", err)
		}

		sector := companymodel.Sector{Name: "Lyon Centre", CompanyID: company.ID}
		if err := db.Where("name = ? AND company_id = ?", sector.Name, company.ID).FirstOrCreate(&sector).Error; err != nil {
			log.Fatalf("failed to seed sector: %v", err)
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		start := time.Now().AddDate(-1, 0, 0)

		seedUser := func(email, firstName, lastName, roleName string, sectorID *int64) {
			var existing usermodel.User
			if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
				fmt.Printf("user %s already exists\n", email)
				return
			}

			roleID := roleIDs[roleName]
			phone := "0601020304"
			ssn := "290037512345678"
			address := "12 rue des Lilas, Lyon"
			birth := time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC)
			u := usermodel.User{
				Email:        email,
				FirstName:    firstName,
				LastName:     lastName,
				PasswordHash: string(hash),
				Phone:        &phone,
				SSN:          &ssn,
				Address:      &address,
				BirthDate:    &birth,
				ClientRoleID: &roleID,
				SectorID:     sectorID,
				IsActive:     true,
			}
			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", email, err)
			}
			membership := usermodel.CompanyMembership{
				UserID:    u.ID,
				CompanyID: company.ID,
				StartDate: start,
			}
			if err := db.Create(&membership).Error; err != nil {
				log.Fatalf("failed to seed membership for %s: %v", email, err)
			}
			fmt.Printf("Seeded user %s (%s)\n", email, roleName)
		}

		seedUser("admin@demo-care.fr", "Claire", "Dubois", authz.RoleClientAdmin, nil)
		seedUser("aux@demo-care.fr", "Jeanne", "Martin", authz.RoleAuxiliary, &sector.ID)

		fmt.Println("Seeding complete. Login with admin@demo-care.fr / password")
	},
}
