package controllers

import (
	"errors"
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QAController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQAController(db *gorm.DB, cfg *config.Config) *QAController {
	return &QAController{DB: db, Cfg: cfg}
}

func (qc *QAController) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := qc.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AskQuestion создаёт вопрос к материалу.
func (qc *QAController) AskQuestion(c *fiber.Ctx) error {
	user, err := qc.currentUser(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var material models.Material
	if err := qc.DB.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Material not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type QuestionInput struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Text == "" {
		return utils.BadRequest(c, "text is required")
	}

	question := models.Question{
		MaterialID: material.ID,
		UserID:     user.ID,
		UserName:   user.Username,
		Title:      input.Title,
		Text:       input.Text,
	}

	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	// TODO: уведомление автора материала о новом вопросе
	return c.JSON(fiber.Map{
		"message":  "Question created",
		"question": question,
	})
}

// GetQuestions возвращает вопросы по материалу вместе с ответами,
// новые первыми.
func (qc *QAController) GetQuestions(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var questions []models.Question
	if err := qc.DB.Preload("Answers").
		Where("material_id = ?", materialID).
		Order("created_at DESC").
		Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch questions")
	}

	return utils.Success(c, fiber.StatusOK, questions)
}

// AnswerQuestion добавляет ответ на вопрос.
func (qc *QAController) AnswerQuestion(c *fiber.Ctx) error {
	user, err := qc.currentUser(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type AnswerInput struct {
		Text string `json:"text"`
	}

	var input AnswerInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Text == "" {
		return utils.BadRequest(c, "text is required")
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     user.ID,
		UserName:   user.Username,
		Text:       input.Text,
	}

	if err := qc.DB.Create(&answer).Error; err != nil {
		return utils.InternalServerError(c, "Could not create answer")
	}

	return c.JSON(fiber.Map{
		"message": "Answer created",
		"answer":  answer,
	})
}

// ResolveQuestion помечает вопрос решённым; доступно только автору вопроса.
func (qc *QAController) ResolveQuestion(c *fiber.Ctx) error {
	user, err := qc.currentUser(c)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if question.UserID != user.ID {
		return utils.Forbidden(c, "Only the question author can resolve it")
	}

	question.IsResolved = true
	if err := qc.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return utils.Success(c, fiber.StatusOK, question)
}
