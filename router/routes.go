package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simfarm/simctl-provider/logger"
	"github.com/simfarm/simctl-provider/simctl"
)

// Handler serves the provider HTTP API over an injected simctl client.
type Handler struct {
	Client *simctl.Client
	Logger *logger.CustomLogger
}

func HandleRequests(client *simctl.Client, log *logger.CustomLogger) *gin.Engine {
	h := &Handler{Client: client, Logger: log}

	r := gin.Default()
	r.GET("/simulators", h.GetDevices)
	r.GET("/available-simulators", h.GetAvailableDevices)
	r.POST("/simulators", h.CreateDevice)
	r.POST("/simulators/:udid/boot", h.BootDevice)
	r.POST("/simulators/:udid/shutdown", h.ShutdownDevice)
	r.POST("/simulators/:udid/erase", h.EraseDevice)
	r.DELETE("/simulators/:udid", h.DeleteDevice)
	r.GET("/simulators/:udid/screenshot", h.GetScreenshot)
	r.GET("/simulators/:udid/stream", h.StreamScreenshots)
	r.POST("/simulators/:udid/url", h.OpenUrl)
	r.POST("/simulators/:udid/apps", h.InstallApp)
	r.DELETE("/simulators/:udid/apps/:bundleID", h.RemoveApp)
	r.POST("/simulators/:udid/apps/:bundleID/launch", h.LaunchApp)
	r.POST("/simulators/:udid/apps/:bundleID/terminate", h.TerminateApp)
	r.GET("/simulators/:udid/apps/:bundleID/container", h.GetAppContainer)

	return r
}

func (h *Handler) GetDevices(c *gin.Context) {
	inventory, err := h.Client.ListDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"devices": inventory,
	})
}

func (h *Handler) GetAvailableDevices(c *gin.Context) {
	sims, err := h.Client.AvailableDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sims": sims,
	})
}

type createDeviceRequest struct {
	Name       string `json:"name"`
	DeviceType string `json:"device_type"`
	Platform   string `json:"platform"`
	Runtime    string `json:"runtime"`
}

// CreateDevice creates a new simulator. The runtime can be given directly
// or resolved from a platform string like `iOS 14.4`.
func (h *Handler) CreateDevice(c *gin.Context) {
	var request createDeviceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	runtime := request.Runtime
	if runtime == "" {
		identifier, found, err := h.Client.RuntimeIdentifier(request.Platform)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
			return
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "No runtime found for platform `" + request.Platform + "`",
			})
			return
		}
		runtime = identifier
	}

	udid, err := h.Client.CreateDevice(request.Name, request.DeviceType, runtime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"udid": udid,
	})
}

func (h *Handler) BootDevice(c *gin.Context) {
	udid := c.Param("udid")

	bootedSims, err := h.Client.BootedDevices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	if len(bootedSims) > 4 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Maximum number of booted simulators reached",
		})
		return
	}

	if err := h.Client.Boot(udid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Simulator booted successfully",
	})
}

func (h *Handler) ShutdownDevice(c *gin.Context) {
	if err := h.Client.Shutdown(c.Param("udid")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Simulator shutdown successfully",
	})
}

func (h *Handler) EraseDevice(c *gin.Context) {
	if err := h.Client.EraseDevice(c.Param("udid")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Simulator erased successfully",
	})
}

func (h *Handler) DeleteDevice(c *gin.Context) {
	if err := h.Client.DeleteDevice(c.Param("udid")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Simulator deleted successfully",
	})
}

func (h *Handler) GetScreenshot(c *gin.Context) {
	screenshot, err := h.Client.GetScreenshot(c.Param("udid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"screenshot": screenshot,
	})
}

func (h *Handler) OpenUrl(c *gin.Context) {
	var request struct {
		Url string `json:"url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.Client.OpenUrl(c.Param("udid"), request.Url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "URL opened successfully",
	})
}

func (h *Handler) InstallApp(c *gin.Context) {
	var request struct {
		AppPath string `json:"app_path"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.Client.InstallApp(c.Param("udid"), request.AppPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "App installed successfully",
	})
}

func (h *Handler) RemoveApp(c *gin.Context) {
	if err := h.Client.RemoveApp(c.Param("udid"), c.Param("bundleID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "App removed successfully",
	})
}

func (h *Handler) LaunchApp(c *gin.Context) {
	var request struct {
		Env map[string]string `json:"env"`
	}
	// The body is optional, launch without overrides when there is none.
	_ = c.ShouldBindJSON(&request)

	output, err := h.Client.Launch(c.Param("udid"), c.Param("bundleID"), request.Env)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"output": output,
	})
}

func (h *Handler) TerminateApp(c *gin.Context) {
	if err := h.Client.Terminate(c.Param("udid"), c.Param("bundleID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "App terminated successfully",
	})
}

func (h *Handler) GetAppContainer(c *gin.Context) {
	container, err := h.Client.GetAppContainer(c.Param("udid"), c.Param("bundleID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"container": container,
	})
}
