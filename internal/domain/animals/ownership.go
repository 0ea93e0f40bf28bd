package animals

import "context"

// OwnerOf expone el ownerUserID de un animal.
// Se usa para evitar ciclos de imports (announcements no importa animals).
func (s *Service) OwnerOf(ctx context.Context, animalID string) (string, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return "", err
	}
	return a.OwnerUserID, nil
}
