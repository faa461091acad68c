package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"school-management-api/models"
	"school-management-api/services"
)

// CreatePost creates a post for the logged-in teacher. Depending on the
// author's authority over the target it comes back as APPROVED (published
// immediately) or PENDING_APPROVAL.
func CreatePost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := postService().Create(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post.ToResponse(),
	})
}

// GetPost returns a single post by id.
func GetPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService().ByID(postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post.ToResponse()})
}

// UpdatePost applies author edits to a DRAFT or REJECTED post.
func UpdatePost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req models.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := postService().Update(postID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post.ToResponse(),
	})
}

// SubmitPost moves a draft or rejected post into the approval queue.
func SubmitPost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService().SubmitForApproval(postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post submitted for approval",
		"post":    post.ToResponse(),
	})
}

// ApprovePost publishes a pending post. Department head or admin only.
func ApprovePost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService().Approve(postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post approved successfully",
		"post":    post.ToResponse(),
	})
}

// RejectPost sends a pending post back to its author with a reason.
func RejectPost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req models.PostRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := postService().Reject(postID, req.Reason, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post rejected",
		"post":    post.ToResponse(),
	})
}

// ArchivePost hides a published post from student feeds.
func ArchivePost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService().Archive(postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post archived",
		"post":    post.ToResponse(),
	})
}

// DeletePost removes a post entirely.
func DeletePost(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	if err := postService().Delete(postID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// GetFeed returns the approved posts visible to the logged-in student.
func GetFeed(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	posts, err := postService().VisiblePostsForStudent(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": toPostResponses(posts),
		"total": len(posts),
	})
}

// GetMyPosts returns every post authored by the logged-in teacher.
func GetMyPosts(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	posts, err := postService().PostsByAuthor(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": toPostResponses(posts),
		"total": len(posts),
	})
}

// GetPendingPosts is the approval queue for the department the logged-in
// head manages. Admins pass the department id explicitly.
func GetPendingPosts(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	departmentID, err := resolveDepartmentParam(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := postService().PendingPostsForDepartment(departmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": toPostResponses(posts),
		"total": len(posts),
	})
}

// GetDepartmentPosts returns the published posts resolving into the head's
// department.
func GetDepartmentPosts(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	departmentID, err := resolveDepartmentParam(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := postService().DepartmentPosts(departmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": toPostResponses(posts),
		"total": len(posts),
	})
}

// GetPostTargets lists the targets the logged-in teacher may address,
// flagging which require approval. Used by the compose UI.
func GetPostTargets(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	targets, err := postService().PostTargets(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// resolveDepartmentParam picks the department for head-scoped listings. A
// department_id query parameter wins for admins; heads fall back to the
// department they manage.
func resolveDepartmentParam(c *gin.Context, userID int) (int, error) {
	if raw := c.Query("department_id"); raw != "" {
		departmentID, err := strconv.Atoi(raw)
		if err == nil {
			if roleID, ok := getCurrentRoleID(c); ok && roleID == models.RoleAdmin {
				return departmentID, nil
			}
		}
	}

	headed, err := authzService().HeadedDepartment(userID)
	if err != nil {
		return 0, err
	}
	if headed == 0 {
		return 0, services.ErrForbidden
	}
	return headed, nil
}

func toPostResponses(posts []models.Post) []models.PostResponse {
	responses := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, posts[i].ToResponse())
	}
	return responses
}
