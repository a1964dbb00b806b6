package mocks

//go:generate mockery --name CallRecordStore --srcpkg github.com/cdr-lab/cdr-service/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
