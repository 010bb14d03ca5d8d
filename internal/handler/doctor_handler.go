package handler

import (
	"net/http"

	"curago-go/internal/repository"

	"github.com/gin-gonic/gin"
)

// DoctorHandler 提供医生目录与医生详情接口。
type DoctorHandler struct {
	doctorRepo repository.DoctorRepository
}

// NewDoctorHandler 创建一个新的 DoctorHandler 实例。
func NewDoctorHandler(doctorRepo repository.DoctorRepository) *DoctorHandler {
	return &DoctorHandler{doctorRepo: doctorRepo}
}

// ListDoctors 按 specialty、mode、language 查询参数筛选医生。
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	doctors := h.doctorRepo.Find(repository.DoctorFilter{
		Specialty: c.Query("specialty"),
		Mode:      c.Query("mode"),
		Language:  c.Query("language"),
	})
	c.JSON(http.StatusOK, gin.H{"doctors": doctors, "total": len(doctors)})
}

// GetDoctor 返回单个医生的详情。
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	doctor, ok := h.doctorRepo.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": "Doctor not found"})
		return
	}
	c.JSON(http.StatusOK, doctor)
}
