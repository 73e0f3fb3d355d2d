// Command seed fills the database with demo accounts, courses,
// challenges and projects for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"skillforge/internal/auth"
	"skillforge/internal/config"
	"skillforge/internal/database"
	"skillforge/internal/models"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	learners := flag.Int("learners", 8, "number of demo learners")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	svc := auth.NewService(db, cfg.Security.BcryptCost, cfg.Session.ExpiryDays)

	if err := seed(db, svc, *learners); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Println("seeding complete")
	log.Println("test accounts:")
	log.Println("  admin:   admin@skillforge.dev / admin123456")
	log.Println("  mentor:  mentor@skillforge.dev / mentor123456")
	log.Println("  learner: learner@skillforge.dev / learner123456")
}

func seed(db *gorm.DB, svc *auth.Service, learners int) error {
	ctx := context.Background()
	f := faker.New()

	if _, err := svc.Register(ctx, "Admin User", "admin@skillforge.dev", "admin123456", models.RoleAdmin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	mentor, err := svc.Register(ctx, "Sample Mentor", "mentor@skillforge.dev", "mentor123456", models.RoleMentor)
	if err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}

	firstLearner, err := svc.Register(ctx, "Sample Learner", "learner@skillforge.dev", "learner123456", models.RoleLearner)
	if err != nil {
		return fmt.Errorf("create learner: %w", err)
	}

	learnerIDs := []uint{firstLearner.ID}
	for i := 0; i < learners; i++ {
		person := f.Person()
		name := person.Name()
		email := strings.ToLower(fmt.Sprintf("%s.%d@example.com",
			strings.ReplaceAll(strings.Fields(name)[0], ".", ""), i))
		u, err := svc.Register(ctx, name, email, "learner123456", models.RoleLearner)
		if err != nil {
			return fmt.Errorf("create learner %d: %w", i, err)
		}
		learnerIDs = append(learnerIDs, u.ID)
	}
	log.Printf("created %d learners", len(learnerIDs))

	courses := []models.Course{
		{
			Title:       "Web Development Fundamentals",
			Description: "Learn the basics of HTML, CSS, and JavaScript to build modern web applications.",
			Level:       models.LevelBeginner,
			Duration:    "8 weeks",
			Instructor:  "Sarah Johnson",
		},
		{
			Title:       "React & TypeScript Mastery",
			Description: "Deep dive into React with TypeScript for building scalable frontend applications.",
			Level:       models.LevelIntermediate,
			Duration:    "10 weeks",
			Instructor:  "Michael Chen",
		},
		{
			Title:       "Backend Development with Go",
			Description: "Build robust backend services with Go, gin and relational databases.",
			Level:       models.LevelIntermediate,
			Duration:    "10 weeks",
			Instructor:  "David Kim",
		},
		{
			Title:       "Full-Stack Engineering",
			Description: "End-to-end application development combining frontend and backend skills.",
			Level:       models.LevelAdvanced,
			Duration:    "16 weeks",
			Instructor:  "Emma Wilson",
		},
	}
	for i := range courses {
		courses[i].Modules = demoModules(&f)
		if err := db.Create(&courses[i]).Error; err != nil {
			return fmt.Errorf("create course: %w", err)
		}
	}
	log.Printf("created %d courses", len(courses))

	challenges := []models.Challenge{
		{
			Title:        "Build a Personal Portfolio",
			Brief:        "Create a responsive portfolio website showcasing your projects and skills.",
			Description:  "Design and develop a personal portfolio that highlights your best work.",
			Rewards:      "$500 cash prize + mentorship session",
			Status:       models.ChallengeActive,
			Participants: 45,
		},
		{
			Title:        "REST API Design",
			Brief:        "Design and implement a RESTful API for a blog platform with authentication.",
			Description:  "Build a complete REST API with user authentication and CRUD operations.",
			Rewards:      "$750 cash prize + internship opportunity",
			Status:       models.ChallengeUpcoming,
			Participants: 0,
		},
		{
			Title:        "Real-time Chat Application",
			Brief:        "Build a real-time chat application using WebSockets.",
			Description:  "Create a chat app with real-time messaging and message history.",
			Rewards:      "$1000 cash prize + job interview",
			Status:       models.ChallengeUpcoming,
			Participants: 0,
		},
	}
	for i := range challenges {
		if err := db.Create(&challenges[i]).Error; err != nil {
			return fmt.Errorf("create challenge: %w", err)
		}
	}
	log.Printf("created %d challenges", len(challenges))

	// enroll every learner in a couple of courses with random progress
	for i, learnerID := range learnerIDs {
		for j := 0; j < 2; j++ {
			course := courses[(i+j)%len(courses)]
			enrollment := models.CourseEnrollment{
				UserID:   learnerID,
				CourseID: course.ID,
				Progress: f.IntBetween(0, 100),
			}
			if err := db.Create(&enrollment).Error; err != nil {
				return fmt.Errorf("create enrollment: %w", err)
			}
		}
	}

	// a draft and a submitted project for the sample learner
	projects := []models.Project{
		{
			UserID:      firstLearner.ID,
			Title:       "Portfolio Site",
			Description: "My personal portfolio built for the portfolio challenge.",
			Tags:        []string{"html", "css"},
			Images:      []string{},
			ChallengeID: &challenges[0].ID,
			Status:      models.ProjectSubmitted,
		},
		{
			UserID:      firstLearner.ID,
			Title:       "Notes CLI",
			Description: "A small command line notes manager, work in progress.",
			Tags:        []string{"go", "cli"},
			Images:      []string{},
			Status:      models.ProjectDraft,
		},
	}
	for i := range projects {
		if err := db.Create(&projects[i]).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}
	}

	// assign the sample mentor to every learner
	for _, learnerID := range learnerIDs {
		assignment := models.MentorAssignment{MentorID: mentor.ID, LearnerID: learnerID}
		if err := db.Create(&assignment).Error; err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
	}

	return nil
}

func demoModules(f *faker.Faker) []models.CourseModule {
	modules := make([]models.CourseModule, 0, 3)
	for i := 0; i < 3; i++ {
		module := models.CourseModule{
			ID:    uuid.NewString(),
			Title: fmt.Sprintf("Module %d: %s", i+1, f.Lorem().Sentence(3)),
		}
		for j := 0; j < 4; j++ {
			module.Lessons = append(module.Lessons, models.CourseLesson{
				ID:       uuid.NewString(),
				Title:    f.Lorem().Sentence(4),
				Duration: fmt.Sprintf("%d min", f.IntBetween(10, 45)),
			})
		}
		modules = append(modules, module)
	}
	return modules
}
