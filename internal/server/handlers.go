package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sahith215/AtmosTrack/internal/models"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "atmostrack-classifier",
	})
}

// handleModel reports the loaded artifact's metadata. It documents the
// feature-order contract with the training pipeline; there is no second
// model to route to.
func (s *Server) handleModel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_version":  s.meta.ModelVersion,
		"classes":        s.meta.Classes,
		"feature_names":  s.meta.FeatureNames,
		"model_accuracy": s.accuracy,
	})
}

// handleClassify binds and validates the feature record, runs the classifier
// and returns the label, confidence and reported accuracy. Binding rejects
// missing or wrong-typed fields before the model is invoked.
func (s *Server) handleClassify(c *gin.Context) {
	var record models.FeatureRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	result, err := s.classifier.Classify(&record)
	if err != nil {
		s.log.Error("inference failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model inference failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindingError turns a gin binding failure into a message naming the
// offending field.
func bindingError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return fmt.Sprintf("field %s is required", fieldErr.Field())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %s must be of type %s", typeErr.Field, typeErr.Type)
	}

	return "invalid request body"
}
