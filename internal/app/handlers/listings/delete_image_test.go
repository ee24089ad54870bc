package listings

import (
	"context"
	"testing"

	"spotaway/internal/domain/shared/fault"
	"spotaway/internal/infra/storage/memory"
)

func TestDeleteListingImageRemovesIt(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()

	create := &CreateListingHandler{UoWFactory: factory}
	listing, err := create.Handle(ctx, CreateListingCommand{OwnerID: 1, Attributes: validAttributes()})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	attach := &AttachListingImageHandler{UoWFactory: factory}
	img, err := attach.Handle(ctx, AttachListingImageCommand{
		ListingID: listing.ID, OwnerID: 1, URL: "https://img.example/a.jpg", Preview: true,
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	del := &DeleteListingImageHandler{UoWFactory: factory}
	if _, err := del.Handle(ctx, DeleteListingImageCommand{ImageID: img.ID, OwnerID: 1}); err != nil {
		t.Fatalf("delete image: %v", err)
	}

	detail := &GetListingDetailHandler{UoWFactory: factory}
	got, err := detail.Handle(ctx, GetListingDetailQuery{ListingID: listing.ID})
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(got.Images) != 0 {
		t.Errorf("images = %+v, image survived delete", got.Images)
	}

	_, err = del.Handle(ctx, DeleteListingImageCommand{ImageID: img.ID, OwnerID: 1})
	if !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("second delete err = %v, want not-found fault", err)
	}
}

func TestDeleteListingImageForbiddenForOtherUser(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()

	create := &CreateListingHandler{UoWFactory: factory}
	listing, err := create.Handle(ctx, CreateListingCommand{OwnerID: 1, Attributes: validAttributes()})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	attach := &AttachListingImageHandler{UoWFactory: factory}
	img, err := attach.Handle(ctx, AttachListingImageCommand{
		ListingID: listing.ID, OwnerID: 1, URL: "https://img.example/a.jpg",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	del := &DeleteListingImageHandler{UoWFactory: factory}
	_, err = del.Handle(ctx, DeleteListingImageCommand{ImageID: img.ID, OwnerID: 2})
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("err = %v, want forbidden fault", err)
	}
}
