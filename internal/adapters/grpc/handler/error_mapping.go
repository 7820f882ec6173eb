package handler

import (
	"errors"

	"github.com/ogurasousui/shiftboard/internal/core/apperr"
	"github.com/ogurasousui/shiftboard/internal/core/company"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/swap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, employee.ErrEmployeeCodeAlreadyExists),
		errors.Is(err, employee.ErrSubjectAlreadyLinked),
		errors.Is(err, company.ErrCodeAlreadyExists),
		errors.Is(err, swap.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	}

	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case apperr.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperr.ErrForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case apperr.ErrUnauthorized:
		return status.Error(codes.Unauthenticated, err.Error())
	case apperr.ErrConflict:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
