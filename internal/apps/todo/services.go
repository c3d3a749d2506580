package todo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrTodoNotFound   = errors.New("todo not found")
	ErrMissingContent = errors.New("content is required")
)

type TodoService struct {
	db *gorm.DB
}

func NewTodoService(db *gorm.DB) *TodoService {
	return &TodoService{db: db}
}

func (s *TodoService) Create(userID uint, req CreateTodoRequest) (*Todo, error) {
	if req.Content == "" {
		return nil, ErrMissingContent
	}

	todo := Todo{UserID: userID, Content: req.Content, DueDate: req.DueDate}
	if err := s.db.Create(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) List(userID uint) ([]Todo, error) {
	var todos []Todo
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&todos).Error
	return todos, err
}

// owned fetches a todo only when it belongs to the caller. A todo that
// exists but belongs to someone else looks identical to one that does
// not exist.
func (s *TodoService) owned(userID, id uint) (*Todo, error) {
	var todo Todo
	if err := s.db.First(&todo, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) Update(userID, id uint, req UpdateTodoRequest) (*Todo, error) {
	todo, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Content != nil {
		if *req.Content == "" {
			return nil, ErrMissingContent
		}
		fields["content"] = *req.Content
	}
	if req.Done != nil {
		fields["done"] = *req.Done
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	if len(fields) > 0 {
		if err := s.db.Model(todo).Updates(fields).Error; err != nil {
			return nil, err
		}
		if err := s.db.First(todo, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}
	return todo, nil
}

func (s *TodoService) Delete(userID, id uint) error {
	todo, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(todo).Error
}
