package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"modpaypal/internal/database"
	"modpaypal/internal/domain"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "paypal.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM paypal_ipn_log")
	db.Exec("DELETE FROM activity_completions")
	db.Exec("DELETE FROM paypal_transactions")
	db.Exec("DELETE FROM paypal")
	db.Exec("DELETE FROM course_teachers")
	db.Exec("DELETE FROM courses")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{Email: "admin@example.com", PasswordHash: string(adminHash), FirstName: "Site", LastName: "Admin", IsAdmin: true}
	db.Create(&admin)
	log.Println("Admin created: admin@example.com / admin123")

	teacherHash, _ := bcrypt.GenerateFromPassword([]byte("teacher123"), bcrypt.DefaultCost)
	teacher := domain.User{Email: "teacher@example.com", PasswordHash: string(teacherHash), FirstName: "Tina", LastName: "Teacher"}
	db.Create(&teacher)
	log.Println("Teacher created: teacher@example.com / teacher123")

	studentHash, _ := bcrypt.GenerateFromPassword([]byte("student123"), bcrypt.DefaultCost)
	student := domain.User{Email: "student@example.com", PasswordHash: string(studentHash), FirstName: "Sam", LastName: "Student"}
	db.Create(&student)
	log.Println("Student created: student@example.com / student123")

	// ================== COURSE ==================
	course := domain.Course{ShortName: "GO101", FullName: "Go 101", CompletionEnabled: true}
	db.Create(&course)
	db.Create(&domain.CourseTeacher{CourseID: course.ID, UserID: teacher.ID})

	inst := domain.Instance{
		CourseID:                 course.ID,
		Name:                     "Course fee",
		Intro:                    "Pay the course fee to complete this activity.",
		BusinessEmail:            "seller@example.com",
		Cost:                     decimal.RequireFromString("10.00"),
		Currency:                 "USD",
		ItemName:                 "Go 101 fee",
		ItemNumber:               "GO101",
		MailStudents:             true,
		MailTeachers:             true,
		MailAdmins:               true,
		PaymentCompletionEnabled: true,
	}
	db.Create(&inst)

	log.Printf("Seed completed: course_id=%d instance_id=%d view=/mod/paypal/view?n=%d", course.ID, inst.ID, inst.ID)
}
